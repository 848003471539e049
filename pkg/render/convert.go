package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/eduplan/seatplan/pkg/errors"
)

// DefaultConverter is the rsvg-convert binary looked up on PATH.
const DefaultConverter = "rsvg-convert"

// ConvertOption configures a conversion.
type ConvertOption func(*converter)

type converter struct {
	bin string
}

// WithConverter runs bin instead of [DefaultConverter]. An empty bin keeps
// the default.
func WithConverter(bin string) ConvertOption {
	return func(c *converter) {
		if bin != "" {
			c.bin = bin
		}
	}
}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte, opts ...ConvertOption) ([]byte, error) {
	c := converter{bin: DefaultConverter}
	for _, opt := range opts {
		opt(&c)
	}
	return c.run(ctx, svg, "pdf")
}

// Available reports whether bin can be found on PATH. An empty bin means
// [DefaultConverter].
func Available(bin string) bool {
	if bin == "" {
		bin = DefaultConverter
	}
	_, err := exec.LookPath(bin)
	return err == nil
}

func (c converter) run(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath(c.bin); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "%s: %s", c.bin, strings.TrimSpace(errBuf.String()))
	}
	if out.Len() == 0 {
		return nil, errors.New(errors.ErrCodeRenderFailure, "%s produced no %s output", c.bin, format)
	}
	return out.Bytes(), nil
}

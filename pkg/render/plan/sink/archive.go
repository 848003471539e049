package sink

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/klauspost/compress/zip"

	"github.com/eduplan/seatplan/pkg/credentials"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/render"
	"github.com/eduplan/seatplan/pkg/seating"
)

// RenderCredentialArchive renders one card per credential and bundles them
// into a ZIP archive. Entries follow input order and are named
// "<lastname>_<firstname>.<ext>" with everything but letters and digits
// removed; repeated names get "_2", "_3", ... before the extension.
//
// Any card failure aborts the whole archive; no partial archive is returned.
func RenderCredentialArchive(ctx context.Context, creds []credentials.Credential, meta seating.Metadata, format CardFormat, opts ...render.ConvertOption) ([]byte, error) {
	if format != CardSVG && format != CardPDF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported card format: %q", format)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	taken := make(map[string]bool, len(creds))

	for _, c := range creds {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "credential archive cancelled")
		}

		var doc []byte
		var err error
		if format == CardPDF {
			doc, err = RenderCredentialPDF(ctx, c, meta, opts...)
		} else {
			doc, err = RenderCredential(c, meta)
		}
		if err != nil {
			return nil, err
		}

		name := ArchiveEntryName(c.Occupant, string(format), taken)
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: meta.GeneratedAt})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "add %s to archive", name)
		}
		if _, err := w.Write(doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "write %s", name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "finish archive")
	}
	return buf.Bytes(), nil
}

// ArchiveEntryName returns a unique archive entry name for o and records it
// in taken.
func ArchiveEntryName(o seating.Occupant, ext string, taken map[string]bool) string {
	var parts []string
	for _, s := range []string{o.LastName, o.FirstName} {
		if s = alnum(s); s != "" {
			parts = append(parts, s)
		}
	}
	base := strings.Join(parts, "_")
	if base == "" {
		base = "occupant"
	}

	name := base + "." + ext
	for n := 2; taken[name]; n++ {
		name = base + "_" + strconv.Itoa(n) + "." + ext
	}
	taken[name] = true
	return name
}

func alnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

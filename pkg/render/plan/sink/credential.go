package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/eduplan/seatplan/pkg/credentials"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/render"
	"github.com/eduplan/seatplan/pkg/render/plan/styles"
	"github.com/eduplan/seatplan/pkg/seating"
)

// A6 landscape credential card, in millimetres.
const (
	CardWidth  = 148.0
	CardHeight = 105.0
)

// CardFormat selects the document type of credential cards.
type CardFormat string

// Card formats.
const (
	CardSVG CardFormat = "svg"
	CardPDF CardFormat = "pdf"
)

// ParseCardFormat accepts "svg" and "pdf".
func ParseCardFormat(s string) (CardFormat, error) {
	switch f := CardFormat(s); f {
	case CardSVG, CardPDF:
		return f, nil
	case "":
		return CardPDF, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported card format: %q (use svg or pdf)", s)
}

// RenderCredential draws one occupant's card carrying their login and
// password. It fails with INVALID_INPUT when the credential has no login.
func RenderCredential(c credentials.Credential, meta seating.Metadata) ([]byte, error) {
	if c.Login == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "credential for %q has no login", c.Occupant.ID)
	}

	var buf bytes.Buffer
	openSVG(&buf, CardWidth, CardHeight)
	fmt.Fprintf(&buf, `  <rect width="%.0f" height="14" fill="%s"/>`+"\n", CardWidth, styles.ColorAccent)
	fmt.Fprintf(&buf, `  <text x="8" y="9.5" font-size="6" font-weight="bold" fill="#FFFFFF">EduPlan</text>`+"\n")
	fmt.Fprintf(&buf, `  <text x="%.0f" y="9.5" font-size="4" fill="#FFFFFF" text-anchor="end">Account credentials</text>`+"\n", CardWidth-8)

	fmt.Fprintf(&buf, `  <text id="name" x="8" y="30" font-size="7" font-weight="bold" fill="%s">%s</text>`+"\n",
		styles.ColorInk, styles.EscapeXML(c.Occupant.DisplayName()))
	if line := cardSubtitle(meta); line != "" {
		fmt.Fprintf(&buf, `  <text x="8" y="38" font-size="3.6" fill="%s">%s</text>`+"\n", styles.ColorMuted, styles.EscapeXML(line))
	}

	fmt.Fprintf(&buf, `  <rect x="8" y="48" width="%.0f" height="32" rx="2" fill="%s" stroke="%s" stroke-width="0.3"/>`+"\n",
		CardWidth-16, styles.ColorEmpty, styles.ColorCellBorder)
	renderCardField(&buf, "Login", c.Login, 60)
	renderCardField(&buf, "Password", c.Password, 72)

	fmt.Fprintf(&buf, `  <text x="8" y="%.0f" font-size="3" fill="%s">Change your password at first sign-in.</text>`+"\n",
		CardHeight-8, styles.ColorMuted)
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// RenderCredentialPDF converts the card from [RenderCredential] to PDF.
func RenderCredentialPDF(ctx context.Context, c credentials.Credential, meta seating.Metadata, opts ...render.ConvertOption) ([]byte, error) {
	svg, err := RenderCredential(c, meta)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg, opts...)
}

func cardSubtitle(meta seating.Metadata) string {
	switch {
	case meta.Class != "" && meta.Establishment != "":
		return meta.Class + " - " + meta.Establishment
	case meta.Class != "":
		return meta.Class
	default:
		return meta.Establishment
	}
}

func renderCardField(buf *bytes.Buffer, label, value string, y float64) {
	fmt.Fprintf(buf, `  <text x="14" y="%.0f" font-size="3.6" fill="%s">%s</text>`+"\n", y, styles.ColorMuted, label)
	fmt.Fprintf(buf, `  <text x="44" y="%.0f" font-size="5" font-family="Courier, monospace" font-weight="bold" fill="%s">%s</text>`+"\n",
		y, styles.ColorInk, styles.EscapeXML(value))
}

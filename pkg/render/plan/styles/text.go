package styles

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode/utf8"
)

const (
	fontHeightRatio = 0.22
	fontCharWidth   = 0.55
	fontSizeMin     = 1.6
	fontSizeMax     = 3.2
	numberRatio     = 0.18
)

// TruncateName keeps the first n runes of s. Surrounding whitespace is
// dropped.
func TruncateName(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// NameFontSize returns the font size for the occupant name lines of a cell,
// shrunk until the longer line fits the cell width.
func NameFontSize(c Cell) float64 {
	n := max(1, utf8.RuneCountInString(c.LastName), utf8.RuneCountInString(c.FirstName))
	byHeight := c.H * fontHeightRatio
	byWidth := c.W * 0.9 / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, byHeight, byWidth))
}

// NumberFontSize returns the font size of the seat number in the cell corner.
func NumberFontSize(c Cell) float64 {
	return max(1.2, min(2.4, c.H*numberRatio))
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

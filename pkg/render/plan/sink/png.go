package sink

import (
	"bytes"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/styles"
	"github.com/eduplan/seatplan/pkg/seating"
)

// DefaultPNGScale is the raster resolution in pixels per millimetre.
const DefaultPNGScale = 4.0

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions applies page options (title, policy, seat size) shared
// with the SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the resolution in pixels per millimetre (default 4).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG draws the same page as [RenderSVG] directly onto a raster
// image. No external converter is involved.
func RenderPNG(p seating.Plan, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: DefaultPNGScale}
	for _, opt := range opts {
		opt(&r)
	}
	page := newSVGRenderer(r.svgOpts...)
	sh, err := prepare(p, page.sheet)
	if err != nil {
		return nil, err
	}

	c, err := newCanvas(PageWidth, PageHeight, r.scale)
	if err != nil {
		return nil, err
	}
	c.rect(0, 0, PageWidth, PageHeight, 0, "#FFFFFF", "")
	c.rect(0, 0, PageWidth, headerH, 0, styles.ColorAccent, "")
	c.text("EduPlan", margin, 11.5, 7, true, "#FFFFFF", 0)
	c.text(page.title, PageWidth-margin, 11.5, 5, false, "#FFFFFF", 1)

	for i, f := range metadataFields(sh.plan.Metadata, page.dateFormat) {
		x, y := metadataAt(i)
		w := c.text(f.Label+": ", x, y, 3.4, false, styles.ColorMuted, 0)
		c.text(f.Value, x+w, y, 3.4, true, styles.ColorInk, 0)
	}

	c.grid(sh)

	x := margin
	for _, s := range styles.Legend() {
		c.rect(x, legendY, 5, 3.5, 0.5, s.Fill, styles.ColorCellBorder)
		c.text(s.Label, x+6.5, legendY+2.9, 3, false, styles.ColorInk, 0)
		x += legendAdvance(s.Label)
	}
	c.text("Occupancy: "+sh.summary.String(), PageWidth-margin, legendY+3.2, 4, true, styles.ColorInk, 1)

	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "encode png")
	}
	return buf.Bytes(), nil
}

type fontSet struct {
	regular, bold *truetype.Font
}

var loadFonts = sync.OnceValues(func() (fontSet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fontSet{}, err
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return fontSet{}, err
	}
	return fontSet{regular: regular, bold: bold}, nil
})

type faceKey struct {
	bold bool
	size float64
}

// canvas draws in millimetres onto a gg context.
type canvas struct {
	dc    *gg.Context
	scale float64
	fonts fontSet
	faces map[faceKey]font.Face
}

func newCanvas(w, h, scale float64) (*canvas, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "load fonts")
	}
	return &canvas{
		dc:    gg.NewContext(int(w*scale+0.5), int(h*scale+0.5)),
		scale: scale,
		fonts: fonts,
		faces: make(map[faceKey]font.Face),
	}, nil
}

func (c *canvas) px(mm float64) float64 { return mm * c.scale }

func (c *canvas) face(size float64, bold bool) font.Face {
	k := faceKey{bold: bold, size: c.px(size)}
	if f, ok := c.faces[k]; ok {
		return f
	}
	ttf := c.fonts.regular
	if bold {
		ttf = c.fonts.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: k.size})
	c.faces[k] = f
	return f
}

func (c *canvas) rect(x, y, w, h, radius float64, fill, stroke string) {
	if radius > 0 {
		c.dc.DrawRoundedRectangle(c.px(x), c.px(y), c.px(w), c.px(h), c.px(radius))
	} else {
		c.dc.DrawRectangle(c.px(x), c.px(y), c.px(w), c.px(h))
	}
	c.dc.SetHexColor(fill)
	if stroke == "" {
		c.dc.Fill()
		return
	}
	c.dc.FillPreserve()
	c.dc.SetHexColor(stroke)
	c.dc.SetLineWidth(c.px(0.2))
	c.dc.Stroke()
}

// text draws s with its baseline at y, anchored horizontally by ax (0 left,
// 0.5 centre, 1 right), and returns the drawn width in millimetres.
func (c *canvas) text(s string, x, y, size float64, bold bool, color string, ax float64) float64 {
	c.dc.SetFontFace(c.face(size, bold))
	c.dc.SetHexColor(color)
	c.dc.DrawStringAnchored(s, c.px(x), c.px(y), ax, 0)
	w, _ := c.dc.MeasureString(s)
	return w / c.scale
}

func (c *canvas) grid(sh sheet) {
	if sh.layout.Empty {
		c.text("No configuration", GridX+GridWidth/2, GridY+GridHeight/2, 6, false, styles.ColorMuted, 0.5)
		return
	}

	sh.paint(c.board, c.seat)
}

func (c *canvas) board(b layout.Board) {
	c.rect(GridX+b.X, GridY+b.Y, b.W, b.H, 1, styles.ColorBoard, "")
	cx, cy := c.px(GridX+b.CenterX()), c.px(GridY+b.CenterY())
	c.dc.Push()
	if !b.Position.Horizontal() {
		c.dc.RotateAbout(gg.Radians(-90), cx, cy)
	}
	c.dc.SetFontFace(c.face(min(b.W, b.H)*0.7, false))
	c.dc.SetHexColor("#FFFFFF")
	c.dc.DrawStringAnchored("BOARD", cx, cy, 0.5, 0.35)
	c.dc.Pop()
}

func (c *canvas) seat(cell styles.Cell) {
	x, y := GridX+cell.X, GridY+cell.Y
	c.rect(x, y, cell.W, cell.H, cell.W*0.08, cell.Swatch.Fill, styles.ColorCellBorder)
	nfs := styles.NumberFontSize(cell)
	c.text(cell.Label(), x+cell.W*0.06, y+nfs+cell.H*0.03, nfs, false, cell.Swatch.Text, 0)
	if !cell.Occupied {
		return
	}
	fs := styles.NameFontSize(cell)
	lastY := y + cell.H*0.58
	c.text(cell.LastName, x+cell.W/2, lastY, fs, true, cell.Swatch.Text, 0.5)
	c.text(cell.FirstName, x+cell.W/2, lastY+fs*1.15, fs, false, cell.Swatch.Text, 0.5)
}

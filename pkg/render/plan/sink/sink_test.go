package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"

	"github.com/eduplan/seatplan/pkg/credentials"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/render"
	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/styles"
	"github.com/eduplan/seatplan/pkg/seating"
)

func samplePlan() seating.Plan {
	return seating.Plan{
		Configuration: seating.Configuration{Columns: []seating.Column{
			{ID: "A", Tables: 5, SeatsPerTable: 2},
			{ID: "B", Tables: 5, SeatsPerTable: 2},
			{ID: "C", Tables: 4, SeatsPerTable: 2},
		}},
		Board: seating.BoardTop,
		Occupants: []seating.Occupant{
			{ID: "s1", FirstName: "Ada", LastName: "Lovelace", Role: seating.RoleDelegate},
			{ID: "s2", FirstName: "Alan", LastName: "Turing", Role: seating.RoleEcoDelegate},
			{ID: "s3", FirstName: "Grace", LastName: "Hopper"},
		},
		Assignment: seating.Assignment{1: "s1", 2: "s2", 28: "s3"},
		Metadata: seating.Metadata{
			Room:          "B204",
			Class:         "2nde <A>",
			Teacher:       "M. Dupont",
			Establishment: "Lycée Victor Hugo",
			GeneratedAt:   time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC),
		},
	}
}

func TestOccupancy(t *testing.T) {
	p := samplePlan()
	l, err := layout.Build(p.Configuration, GridWidth, GridHeight, p.Board)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	tests := []struct {
		name       string
		assignment seating.Assignment
		want       string
	}{
		{"empty", seating.Assignment{}, "0/28"},
		{"nil", nil, "0/28"},
		{"three", p.Assignment, "3/28"},
		{"unknown occupant", seating.Assignment{1: "s1", 5: "ghost"}, "1/28"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Occupancy(l, tt.assignment, p.Roster()).String(); got != tt.want {
				t.Errorf("Occupancy() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(samplePlan())
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	out := string(svg)

	for _, want := range []string{
		`viewBox="0 0 297 210"`,
		`width="297mm"`,
		">EduPlan<",
		DefaultTitle,
		"B204",
		"2nde &lt;A&gt;",
		"Lycée Victor Hugo",
		"02/09/2024 08:30",
		`id="seat-1"`,
		`id="seat-28"`,
		"Occupancy: 3/28",
		">Lovelace<",
		">BOARD<",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(out, `id="seat-29"`) {
		t.Error("SVG has a seat past the configured total")
	}
	for _, s := range styles.Legend() {
		if !strings.Contains(out, ">"+s.Label+"<") {
			t.Errorf("legend missing %q", s.Label)
		}
	}
}

func TestRenderSVGSeatColours(t *testing.T) {
	p := samplePlan()
	p.Assignment[3] = "ghost"
	svg, err := RenderSVG(p)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	out := string(svg)

	tests := []struct {
		seat int
		fill string
	}{
		{1, styles.ColorAccent},
		{2, styles.ColorEco},
		{28, styles.ColorNeutral},
		{3, styles.ColorEmpty},
		{4, styles.ColorEmpty},
	}
	for _, tt := range tests {
		if got := seatFill(t, out, tt.seat); got != tt.fill {
			t.Errorf("seat %d fill = %s, want %s", tt.seat, got, tt.fill)
		}
	}
	if !strings.Contains(out, "Occupancy: 3/28") {
		t.Error("unknown occupant should not count as occupied")
	}
}

func seatFill(t *testing.T, svg string, n int) string {
	t.Helper()
	marker := `id="seat-` + strconv.Itoa(n) + `"`
	i := strings.Index(svg, marker)
	if i < 0 {
		t.Fatalf("seat %d not found", n)
	}
	rest := svg[i:]
	j := strings.Index(rest, `fill="`)
	rest = rest[j+len(`fill="`):]
	return rest[:strings.IndexByte(rest, '"')]
}

func TestRenderSVGEmptyAssignment(t *testing.T) {
	p := samplePlan()
	p.Assignment = seating.Assignment{}
	svg, err := RenderSVG(p)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "Occupancy: 0/28") {
		t.Error("empty assignment should print 0/28")
	}
	if strings.Contains(string(svg), `class="seat-name"`) {
		t.Error("empty assignment should print no names")
	}
}

func TestRenderSVGBoardOrder(t *testing.T) {
	tests := []struct {
		board       seating.BoardPosition
		boardBefore bool
	}{
		{seating.BoardTop, true},
		{seating.BoardLeft, true},
		{seating.BoardBottom, false},
		{seating.BoardRight, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.board), func(t *testing.T) {
			p := samplePlan()
			p.Board = tt.board
			svg, err := RenderSVG(p)
			if err != nil {
				t.Fatalf("RenderSVG() error: %v", err)
			}
			out := string(svg)
			board := strings.Index(out, `id="board"`)
			seat := strings.Index(out, `id="seat-1"`)
			if board < 0 || seat < 0 {
				t.Fatal("board or seat 1 missing")
			}
			if (board < seat) != tt.boardBefore {
				t.Errorf("board drawn before grid = %v, want %v", board < seat, tt.boardBefore)
			}
			if !strings.Contains(out, `class="board-`+string(tt.board)+`"`) {
				t.Errorf("board class for %s missing", tt.board)
			}
		})
	}
}

func TestRenderSVGPlaceholder(t *testing.T) {
	p := samplePlan()
	p.Configuration = seating.Configuration{}
	p.Assignment = nil
	svg, err := RenderSVG(p)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, "No configuration") {
		t.Error("placeholder text missing")
	}
	if strings.Contains(out, `class="seat"`) {
		t.Error("placeholder should draw no seats")
	}
	if !strings.Contains(out, "Occupancy: 0/0") {
		t.Error("placeholder occupancy should be 0/0")
	}
}

func TestRenderRejectsInvalidPlan(t *testing.T) {
	oversize := samplePlan()
	oversize.Configuration = seating.Configuration{Columns: []seating.Column{
		{ID: "A", Tables: 35, SeatsPerTable: 10},
		{ID: "B", Tables: 1, SeatsPerTable: 1},
	}}
	outOfRange := samplePlan()
	outOfRange.Assignment = seating.Assignment{29: "s1"}

	tests := []struct {
		name string
		plan seating.Plan
		code errors.Code
	}{
		{"351 seats", oversize, errors.ErrCodeInvalidConfiguration},
		{"seat out of range", outOfRange, errors.ErrCodeInvalidAssignment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renders := map[string]func() ([]byte, error){
				"svg":    func() ([]byte, error) { return RenderSVG(tt.plan) },
				"png":    func() ([]byte, error) { return RenderPNG(tt.plan) },
				"json":   func() ([]byte, error) { return RenderJSON(tt.plan) },
				"roster": func() ([]byte, error) { return RenderRoster(tt.plan) },
				"pdf":    func() ([]byte, error) { return RenderPDF(context.Background(), tt.plan) },
			}
			for name, fn := range renders {
				out, err := fn()
				if !errors.Is(err, tt.code) {
					t.Errorf("%s: error = %v, want %s", name, err, tt.code)
				}
				if out != nil {
					t.Errorf("%s: returned output for an invalid plan", name)
				}
			}
		})
	}
}

func TestRenderSVGCustomPolicy(t *testing.T) {
	p := samplePlan()
	if _, err := RenderSVG(p, WithPolicy(seating.Policy{MaxSeats: 20, MaxColumns: 6})); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("RenderSVG() with a 20 seat policy error = %v", err)
	}
	svg, err := RenderSVG(p, WithTitle("Exam & quiz"))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "Exam &amp; quiz") {
		t.Error("custom title missing")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	a, err := RenderSVG(samplePlan())
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderSVG(samplePlan())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("RenderSVG() is not deterministic")
	}
}

func TestRenderPDFConverterFailure(t *testing.T) {
	out, err := RenderPDF(context.Background(), samplePlan(), WithPDFConverter("eduplan-no-such-converter"))
	if !errors.Is(err, errors.ErrCodeRenderFailure) {
		t.Fatalf("RenderPDF() error = %v, want RENDER_FAILURE", err)
	}
	if out != nil {
		t.Error("RenderPDF() returned partial output")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(samplePlan(), WithScale(2))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 594 || b.Dy() != 420 {
		t.Errorf("image size = %dx%d, want 594x420", b.Dx(), b.Dy())
	}

	for _, board := range seating.BoardPositions {
		p := samplePlan()
		p.Board = board
		if _, err := RenderPNG(p); err != nil {
			t.Errorf("RenderPNG(%s) error: %v", board, err)
		}
	}
}

func TestSheetPaintOrder(t *testing.T) {
	for _, board := range seating.BoardPositions {
		p := samplePlan()
		p.Board = board
		sh, err := prepare(p, defaultSheetOptions())
		if err != nil {
			t.Fatalf("prepare(%s) error: %v", board, err)
		}

		var order []string
		sh.paint(
			func(layout.Board) { order = append(order, "board") },
			func(styles.Cell) { order = append(order, "seat") },
		)
		if len(order) != len(sh.cells)+1 {
			t.Fatalf("%s: painted %d items, want %d", board, len(order), len(sh.cells)+1)
		}
		boardAt := 0
		if !board.Leading() {
			boardAt = len(order) - 1
		}
		if order[boardAt] != "board" {
			t.Errorf("%s: board painted at %d, want %d", board, slices.Index(order, "board"), boardAt)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	p := samplePlan()
	p.Assignment[4] = "ghost"
	data, err := RenderJSON(p)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Page.Width != PageWidth || out.Grid.Width != GridWidth {
		t.Errorf("page/grid = %+v / %+v", out.Page, out.Grid)
	}
	if len(out.Seats) != 28 {
		t.Fatalf("len(Seats) = %d, want 28", len(out.Seats))
	}
	if out.Occupancy != (Summary{Occupied: 3, Total: 28}) {
		t.Errorf("Occupancy = %+v", out.Occupancy)
	}
	if out.Board.Position != "top" {
		t.Errorf("Board.Position = %q", out.Board.Position)
	}

	first := out.Seats[0]
	if first.Number != 1 || first.Column != "A" || first.Table != 1 || first.Index != 1 {
		t.Errorf("first seat = %+v", first)
	}
	if first.Occupant == nil || first.Occupant.ID != "s1" || first.Occupant.Role != "delegate" {
		t.Errorf("first seat occupant = %+v", first.Occupant)
	}
	if out.Seats[3].Occupant != nil {
		t.Error("seat 4 references an unknown occupant and should be empty")
	}
	if last := out.Seats[27]; last.Column != "C" || last.Table != 4 || last.Index != 2 {
		t.Errorf("last seat = %+v", last)
	}
}

func sampleCredentials() []credentials.Credential {
	return []credentials.Credential{
		{Occupant: seating.Occupant{ID: "s1", FirstName: "Ada", LastName: "Lovelace"}, Login: "alovelace", Password: "pw1"},
		{Occupant: seating.Occupant{ID: "s2", FirstName: "Jean-Luc", LastName: "N'Diaye"}, Login: "jndiaye", Password: "pw2"},
		{Occupant: seating.Occupant{ID: "s3", FirstName: "Ada", LastName: "Lovelace"}, Login: "alovelace2", Password: "pw3"},
		{Occupant: seating.Occupant{ID: "s4", FirstName: "Éloïse", LastName: "Brontë"}, Login: "ebronte", Password: "pw4"},
		{Occupant: seating.Occupant{ID: "s5", FirstName: "?!", LastName: "--"}, Login: "user", Password: "pw5"},
	}
}

func TestRenderCredential(t *testing.T) {
	c := sampleCredentials()[1]
	svg, err := RenderCredential(c, samplePlan().Metadata)
	if err != nil {
		t.Fatalf("RenderCredential() error: %v", err)
	}
	out := string(svg)
	for _, want := range []string{"Jean-Luc N&#39;Diaye", "jndiaye", "pw2", "2nde &lt;A&gt; - Lycée Victor Hugo", `width="148mm"`} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q", want)
		}
	}

	c.Login = ""
	if _, err := RenderCredential(c, seating.Metadata{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RenderCredential() without login error = %v", err)
	}
}

func TestRenderCredentialArchive(t *testing.T) {
	creds := sampleCredentials()
	data, err := RenderCredentialArchive(context.Background(), creds, samplePlan().Metadata, CardSVG)
	if err != nil {
		t.Fatalf("RenderCredentialArchive() error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error: %v", err)
	}
	want := []string{
		"Lovelace_Ada.svg",
		"NDiaye_JeanLuc.svg",
		"Lovelace_Ada_2.svg",
		"Brontë_Éloïse.svg",
		"occupant.svg",
	}
	if len(zr.File) != len(creds) {
		t.Fatalf("archive has %d entries, want %d", len(zr.File), len(creds))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, f.Name, want[i])
		}
	}

	rc, err := zr.File[1].Open()
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if !strings.Contains(string(body), "jndiaye") {
		t.Error("second entry is not N'Diaye's card")
	}

	again, err := RenderCredentialArchive(context.Background(), creds, samplePlan().Metadata, CardSVG)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("archive is not deterministic")
	}
}

func TestRenderCredentialArchiveFailures(t *testing.T) {
	creds := sampleCredentials()
	if _, err := RenderCredentialArchive(context.Background(), creds, seating.Metadata{}, "docx"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown format error = %v", err)
	}

	creds[2].Login = ""
	out, err := RenderCredentialArchive(context.Background(), creds, seating.Metadata{}, CardSVG)
	if err == nil || out != nil {
		t.Errorf("archive with a broken card = %d bytes, %v", len(out), err)
	}

	out, err = RenderCredentialArchive(context.Background(), sampleCredentials(), seating.Metadata{}, CardPDF,
		render.WithConverter("eduplan-no-such-converter"))
	if !errors.Is(err, errors.ErrCodeRenderFailure) || out != nil {
		t.Errorf("pdf archive without converter = %d bytes, %v", len(out), err)
	}
}

func TestParseCardFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    CardFormat
		wantErr bool
	}{
		{"", CardPDF, false},
		{"pdf", CardPDF, false},
		{"svg", CardSVG, false},
		{"png", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCardFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCardFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestRenderRoster(t *testing.T) {
	data, err := RenderRoster(samplePlan())
	if err != nil {
		t.Fatalf("RenderRoster() error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(RosterSheet)
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	if len(rows) != 29 {
		t.Fatalf("rows = %d, want header + 28", len(rows))
	}
	if rows[0][0] != "Seat" || rows[0][3] != "Last name" {
		t.Errorf("header = %v", rows[0])
	}
	if got := rows[1]; got[0] != "1" || got[1] != "A" || got[3] != "Lovelace" || got[5] != "Delegate" {
		t.Errorf("seat 1 row = %v", got)
	}
	if got := rows[28]; got[0] != "28" || got[1] != "C" || got[2] != "4" || got[3] != "Hopper" {
		t.Errorf("seat 28 row = %v", got)
	}

	summary, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatalf("GetRows(summary) error: %v", err)
	}
	last := summary[len(summary)-1]
	if last[0] != "Occupancy" || last[1] != "3/28" {
		t.Errorf("summary last row = %v", last)
	}
}

package store

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/seating"
	"github.com/eduplan/seatplan/pkg/session"
)

var testScope = session.Scope{EstablishmentID: "lycee-hugo", UserID: "t1"}

func sampleDataset() Dataset {
	return Dataset{
		Establishment: EstablishmentRecord{ID: "lycee-hugo", Name: "Lycée Victor Hugo"},
		Rooms: []RoomRecord{{
			ID:   "b12",
			Name: "B12",
			Layout: map[string]any{"columns": []any{
				map[string]any{"id": "A", "tables": 5.0, "seats_per_table": 2.0},
				map[string]any{"id": "B", "tableCount": "5", "seatsPerTable": 2},
				map[string]any{"tables": int64(4), "studentsPerTable": int32(2)},
			}},
			Assignment: map[string]string{"1": "s1", "28": "s2"},
			ClassID:    "2nde-3",
		}},
		SubRooms: []SubRoomRecord{{
			ID:         "labo",
			RoomID:     "b12",
			Name:       "Lab",
			Board:      "left",
			Layout:     map[string]any{"columns": []any{map[string]any{"tables": 2, "seats": 3}}},
			Assignment: map[string]string{"6": "s2"},
			TeacherID:  "t-curie",
		}},
		Classes: []ClassRecord{{ID: "2nde-3", Name: "2nde 3", TeacherID: "t-dupont"}},
		Students: []StudentRecord{
			{ID: "s1", ClassID: "2nde-3", FirstName: "Ada", LastName: "Lovelace", Role: "délégué"},
			{ID: "s2", ClassID: "2nde-3", FirstName: "Alan", LastName: "Turing"},
			{ID: "s9", ClassID: "1ere-1", FirstName: "Grace", LastName: "Hopper"},
		},
		Teachers: []TeacherRecord{
			{ID: "t-dupont", Title: "M.", LastName: "Dupont"},
			{ID: "t-curie", Title: "Mme", FirstName: "Marie", LastName: "Curie"},
		},
	}
}

func TestDecodeLayout(t *testing.T) {
	cfg, err := DecodeLayout(sampleDataset().Rooms[0].Layout)
	if err != nil {
		t.Fatalf("DecodeLayout() error: %v", err)
	}
	want := []seating.Column{
		{ID: "A", Tables: 5, SeatsPerTable: 2},
		{ID: "B", Tables: 5, SeatsPerTable: 2},
		{ID: "C", Tables: 4, SeatsPerTable: 2},
	}
	if len(cfg.Columns) != len(want) {
		t.Fatalf("got %d columns, want %d", len(cfg.Columns), len(want))
	}
	for i := range want {
		if cfg.Columns[i] != want[i] {
			t.Errorf("column %d = %+v, want %+v", i, cfg.Columns[i], want[i])
		}
	}
	if cfg.TotalSeats() != 28 {
		t.Errorf("TotalSeats() = %d, want 28", cfg.TotalSeats())
	}
}

func TestDecodeLayoutTypedCollections(t *testing.T) {
	// TOML decodes arrays of tables as []map[string]interface{}.
	raw := map[string]any{"columns": []map[string]any{
		{"id": "Fenêtre", "tables": int64(3), "seats_per_table": int64(1)},
	}}
	cfg, err := DecodeLayout(raw)
	if err != nil {
		t.Fatalf("DecodeLayout() error: %v", err)
	}
	if cfg.Columns[0] != (seating.Column{ID: "Fenêtre", Tables: 3, SeatsPerTable: 1}) {
		t.Errorf("column = %+v", cfg.Columns[0])
	}
}

func TestDecodeLayoutEmpty(t *testing.T) {
	for _, raw := range []map[string]any{nil, {}, {"columns": nil}, {"columns": []any{}}} {
		cfg, err := DecodeLayout(raw)
		if err != nil {
			t.Errorf("DecodeLayout(%v) error: %v", raw, err)
		}
		if !cfg.IsEmpty() {
			t.Errorf("DecodeLayout(%v) = %+v, want empty", raw, cfg)
		}
	}
}

func TestDecodeLayoutMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"columns not array", map[string]any{"columns": "A,B"}},
		{"column not object", map[string]any{"columns": []any{42}}},
		{"missing tables", map[string]any{"columns": []any{map[string]any{"seats_per_table": 2}}}},
		{"missing seats", map[string]any{"columns": []any{map[string]any{"tables": 2}}}},
		{"fractional", map[string]any{"columns": []any{map[string]any{"tables": 2.5, "seats": 2}}}},
		{"word", map[string]any{"columns": []any{map[string]any{"tables": "five", "seats": 2}}}},
		{"bool", map[string]any{"columns": []any{map[string]any{"tables": true, "seats": 2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLayout(tt.raw)
			if !apperrors.Is(err, apperrors.ErrCodeInvalidRecord) {
				t.Errorf("DecodeLayout() error = %v, want INVALID_RECORD", err)
			}
		})
	}
}

func TestColumnName(t *testing.T) {
	tests := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB"}
	for i, want := range tests {
		if got := columnName(i); got != want {
			t.Errorf("columnName(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  any
		wantErr bool
	}{
		{"room", RoomRecord{ID: "r1", Name: "B12"}, false},
		{"room without name", RoomRecord{ID: "r1"}, true},
		{"room bad board", RoomRecord{ID: "r1", Name: "B12", Board: "ceiling"}, true},
		{"student", StudentRecord{ID: "s1", FirstName: "Ada", LastName: "Lovelace"}, false},
		{"student without last name", StudentRecord{ID: "s1", FirstName: "Ada"}, true},
		{"teacher", TeacherRecord{ID: "t1", LastName: "Dupont"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate("test", tt.record)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidRecord) {
				t.Errorf("Validate() code = %s", apperrors.GetCode(err))
			}
		})
	}
}

func TestToOccupant(t *testing.T) {
	o, err := ToOccupant(StudentRecord{ID: "s1", FirstName: " Ada ", LastName: "Lovelace", Role: "Eco_Delegate"})
	if err != nil {
		t.Fatalf("ToOccupant() error: %v", err)
	}
	if o.FirstName != "Ada" || o.Role != seating.RoleEcoDelegate {
		t.Errorf("ToOccupant() = %+v", o)
	}

	_, err = ToOccupant(StudentRecord{ID: "s1", FirstName: "Ada", LastName: "Love\x00lace"})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidRecord) {
		t.Errorf("control character error = %v", err)
	}
}

func TestToAssignmentMalformed(t *testing.T) {
	_, err := ToAssignment("room b12", map[string]string{"front-left": "s1"})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidRecord) {
		t.Errorf("ToAssignment() error = %v, want INVALID_RECORD", err)
	}
}

func TestResolvePlan(t *testing.T) {
	st := NewMemory(sampleDataset())
	at := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	p, err := ResolvePlan(context.Background(), st, testScope, PlanRequest{RoomID: "b12", GeneratedAt: at})
	if err != nil {
		t.Fatalf("ResolvePlan() error: %v", err)
	}
	if p.Configuration.TotalSeats() != 28 {
		t.Errorf("TotalSeats() = %d", p.Configuration.TotalSeats())
	}
	if p.BoardPosition() != seating.BoardTop {
		t.Errorf("board = %q", p.Board)
	}
	if len(p.Occupants) != 2 {
		t.Errorf("occupants = %d, want 2 (class members only)", len(p.Occupants))
	}
	if p.Assignment[1] != "s1" || p.Assignment[28] != "s2" {
		t.Errorf("assignment = %v", p.Assignment)
	}
	want := seating.Metadata{Room: "B12", Class: "2nde 3", Teacher: "M. Dupont", Establishment: "Lycée Victor Hugo", GeneratedAt: at}
	if p.Metadata != want {
		t.Errorf("metadata = %+v, want %+v", p.Metadata, want)
	}
	if err := p.Validate(seating.DefaultPolicy); err != nil {
		t.Errorf("resolved plan should validate: %v", err)
	}
}

func TestResolvePlanSubRoom(t *testing.T) {
	st := NewMemory(sampleDataset())

	p, err := ResolvePlan(context.Background(), st, testScope, PlanRequest{RoomID: "b12", SubRoomID: "labo"})
	if err != nil {
		t.Fatalf("ResolvePlan() error: %v", err)
	}
	if p.Configuration.TotalSeats() != 6 {
		t.Errorf("TotalSeats() = %d, want 6", p.Configuration.TotalSeats())
	}
	if p.BoardPosition() != seating.BoardLeft {
		t.Errorf("board = %q, want left", p.Board)
	}
	if len(p.Assignment) != 1 || p.Assignment[6] != "s2" {
		t.Errorf("assignment = %v", p.Assignment)
	}
	if p.Metadata.Room != "B12 / Lab" || p.Metadata.Teacher != "Mme Marie Curie" {
		t.Errorf("metadata = %+v", p.Metadata)
	}
	if p.Metadata.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should default to now")
	}
}

func TestResolvePlanErrors(t *testing.T) {
	ds := sampleDataset()
	ds.Teachers = nil
	st := NewMemory(ds)
	ctx := context.Background()

	p, err := ResolvePlan(ctx, st, testScope, PlanRequest{RoomID: "b12"})
	if err != nil {
		t.Fatalf("missing teacher should not fail: %v", err)
	}
	if p.Metadata.Teacher != "" {
		t.Errorf("Teacher = %q, want empty", p.Metadata.Teacher)
	}

	tests := []struct {
		name  string
		scope session.Scope
		req   PlanRequest
		code  apperrors.Code
	}{
		{"unknown room", testScope, PlanRequest{RoomID: "c4"}, apperrors.ErrCodeNotFound},
		{"unknown sub-room", testScope, PlanRequest{RoomID: "b12", SubRoomID: "gym"}, apperrors.ErrCodeNotFound},
		{"other establishment", session.Scope{EstablishmentID: "college-curie"}, PlanRequest{RoomID: "b12"}, apperrors.ErrCodeNotFound},
		{"no scope", session.Scope{}, PlanRequest{RoomID: "b12"}, apperrors.ErrCodeInvalidInput},
		{"bad room id", testScope, PlanRequest{RoomID: "../b12"}, apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePlan(ctx, st, tt.scope, tt.req)
			if !apperrors.Is(err, tt.code) {
				t.Errorf("ResolvePlan() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestResolvePlanMalformedRecord(t *testing.T) {
	ds := sampleDataset()
	ds.Students = append(ds.Students, StudentRecord{ID: "s3", ClassID: "2nde-3", FirstName: "Nameless"})
	st := NewMemory(ds)

	_, err := ResolvePlan(context.Background(), st, testScope, PlanRequest{RoomID: "b12"})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidRecord) {
		t.Errorf("ResolvePlan() error = %v, want INVALID_RECORD", err)
	}
}

func TestTeacherDisplayName(t *testing.T) {
	if got := (TeacherRecord{LastName: "Dupont"}).DisplayName(); got != "Dupont" {
		t.Errorf("DisplayName() = %q", got)
	}
}

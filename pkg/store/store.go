// Package store is the read-only boundary to the school's record store.
//
// Records arrive as loosely typed documents: room layouts are dynamic
// key/value payloads written by several generations of the room editor.
// Every record is validated and converted into [seating] values here, so
// the planner and the exporter never see a raw payload.
//
// Every call takes an explicit [session.Scope]. Backends filter by
// Scope.EstablishmentID and report records of other establishments as
// missing.
//
// # Backends
//
//   - [github.com/eduplan/seatplan/pkg/store/postgres]: JSONB columns via lib/pq
//   - [github.com/eduplan/seatplan/pkg/store/mongo]: one collection per record kind
//   - [github.com/eduplan/seatplan/pkg/store/file]: one TOML dataset per establishment
//   - [Memory]: in-process datasets for tests and demos
package store

import (
	"context"

	"github.com/eduplan/seatplan/pkg/session"
)

// Store reads the records needed to build a seating plan. Missing records
// fail with NOT_FOUND, malformed ones with INVALID_RECORD.
type Store interface {
	Establishment(ctx context.Context, scope session.Scope) (EstablishmentRecord, error)
	Room(ctx context.Context, scope session.Scope, roomID string) (RoomRecord, error)
	SubRoom(ctx context.Context, scope session.Scope, roomID, subRoomID string) (SubRoomRecord, error)
	Class(ctx context.Context, scope session.Scope, classID string) (ClassRecord, error)
	// Students returns the class members in the store's order.
	Students(ctx context.Context, scope session.Scope, classID string) ([]StudentRecord, error)
	Teacher(ctx context.Context, scope session.Scope, teacherID string) (TeacherRecord, error)
	Close() error
}

// EstablishmentRecord is a school.
type EstablishmentRecord struct {
	ID   string `json:"id" toml:"id" bson:"_id" validate:"required"`
	Name string `json:"name" toml:"name" bson:"name" validate:"required"`
}

// RoomRecord is a classroom with its drawn layout and default seating.
type RoomRecord struct {
	ID              string            `json:"id" toml:"id" bson:"_id" validate:"required"`
	EstablishmentID string            `json:"establishment_id" toml:"-" bson:"establishment_id"`
	Name            string            `json:"name" toml:"name" bson:"name" validate:"required"`
	Board           string            `json:"board,omitempty" toml:"board" bson:"board" validate:"board"`
	Layout          map[string]any    `json:"layout,omitempty" toml:"layout" bson:"layout"`
	Assignment      map[string]string `json:"assignment,omitempty" toml:"assignment" bson:"assignment"`
	ClassID         string            `json:"class_id,omitempty" toml:"class_id" bson:"class_id"`
	TeacherID       string            `json:"teacher_id,omitempty" toml:"teacher_id" bson:"teacher_id"`
}

// SubRoomRecord is a named variant of a room, typically one class or
// teacher using it. A nil Layout inherits the room's layout; an empty
// Board inherits the room's board.
type SubRoomRecord struct {
	ID         string            `json:"id" toml:"id" bson:"_id" validate:"required"`
	RoomID     string            `json:"room_id" toml:"room_id" bson:"room_id" validate:"required"`
	Name       string            `json:"name" toml:"name" bson:"name" validate:"required"`
	Board      string            `json:"board,omitempty" toml:"board" bson:"board" validate:"board"`
	Layout     map[string]any    `json:"layout,omitempty" toml:"layout" bson:"layout"`
	Assignment map[string]string `json:"assignment,omitempty" toml:"assignment" bson:"assignment"`
	ClassID    string            `json:"class_id,omitempty" toml:"class_id" bson:"class_id"`
	TeacherID  string            `json:"teacher_id,omitempty" toml:"teacher_id" bson:"teacher_id"`
}

// ClassRecord is a group of students.
type ClassRecord struct {
	ID        string `json:"id" toml:"id" bson:"_id" validate:"required"`
	Name      string `json:"name" toml:"name" bson:"name" validate:"required"`
	TeacherID string `json:"teacher_id,omitempty" toml:"teacher_id" bson:"teacher_id"`
}

// StudentRecord is one class member.
type StudentRecord struct {
	ID        string `json:"id" toml:"id" bson:"_id" validate:"required"`
	ClassID   string `json:"class_id" toml:"class_id" bson:"class_id"`
	FirstName string `json:"first_name" toml:"first_name" bson:"first_name" validate:"required,max=200"`
	LastName  string `json:"last_name" toml:"last_name" bson:"last_name" validate:"required,max=200"`
	Role      string `json:"role,omitempty" toml:"role" bson:"role"`
	Login     string `json:"login,omitempty" toml:"login" bson:"login"`
}

// TeacherRecord is a member of staff.
type TeacherRecord struct {
	ID        string `json:"id" toml:"id" bson:"_id" validate:"required"`
	Title     string `json:"title,omitempty" toml:"title" bson:"title"`
	FirstName string `json:"first_name,omitempty" toml:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" toml:"last_name" bson:"last_name" validate:"required"`
}

// DisplayName returns "Title First Last" without empty parts.
func (t TeacherRecord) DisplayName() string {
	name := ""
	for _, part := range []string{t.Title, t.FirstName, t.LastName} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

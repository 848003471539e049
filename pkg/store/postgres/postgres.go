// Package postgres reads EduPlan records from PostgreSQL.
//
// Layouts and assignments live in JSONB columns and are decoded here into
// the loosely typed record fields; conversion into seating values happens
// in the parent store package. Every query filters on the establishment
// of the caller's scope.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/lib/pq"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/session"
	"github.com/eduplan/seatplan/pkg/store"
)

const (
	queryEstablishment = `SELECT id, name FROM establishments WHERE id = $1`

	queryRoom = `SELECT id, establishment_id, name, COALESCE(board, ''), layout, assignment,
		COALESCE(class_id, ''), COALESCE(teacher_id, '')
		FROM rooms WHERE id = $1 AND establishment_id = $2`

	querySubRoom = `SELECT s.id, s.room_id, s.name, COALESCE(s.board, ''), s.layout, s.assignment,
		COALESCE(s.class_id, ''), COALESCE(s.teacher_id, '')
		FROM sub_rooms s JOIN rooms r ON r.id = s.room_id
		WHERE s.id = $1 AND s.room_id = $2 AND r.establishment_id = $3`

	queryClass = `SELECT id, name, COALESCE(teacher_id, '')
		FROM classes WHERE id = $1 AND establishment_id = $2`

	queryStudents = `SELECT id, class_id, first_name, last_name, COALESCE(role, ''), COALESCE(login, '')
		FROM students WHERE class_id = $1 AND establishment_id = $2
		ORDER BY last_name, first_name, id`

	queryTeacher = `SELECT id, COALESCE(title, ''), COALESCE(first_name, ''), last_name
		FROM teachers WHERE id = $1 AND establishment_id = $2`
)

// Store implements [store.Store] on a *sql.DB.
type Store struct {
	db *sql.DB
}

// Open connects to dsn with the lib/pq driver and pings the server.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "ping postgres")
	}
	return New(db), nil
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Establishment(ctx context.Context, scope session.Scope) (store.EstablishmentRecord, error) {
	var r store.EstablishmentRecord
	err := s.db.QueryRowContext(ctx, queryEstablishment, scope.EstablishmentID).Scan(&r.ID, &r.Name)
	if err != nil {
		return r, queryError(err, "establishment", scope.EstablishmentID)
	}
	return r, nil
}

func (s *Store) Room(ctx context.Context, scope session.Scope, roomID string) (store.RoomRecord, error) {
	var (
		r                  store.RoomRecord
		layout, assignment []byte
	)
	err := s.db.QueryRowContext(ctx, queryRoom, roomID, scope.EstablishmentID).Scan(
		&r.ID, &r.EstablishmentID, &r.Name, &r.Board, &layout, &assignment, &r.ClassID, &r.TeacherID)
	if err != nil {
		return r, queryError(err, "room", roomID)
	}
	if err := decodeJSONB("room", roomID, layout, &r.Layout); err != nil {
		return r, err
	}
	if err := decodeJSONB("room", roomID, assignment, &r.Assignment); err != nil {
		return r, err
	}
	return r, nil
}

func (s *Store) SubRoom(ctx context.Context, scope session.Scope, roomID, subRoomID string) (store.SubRoomRecord, error) {
	var (
		r                  store.SubRoomRecord
		layout, assignment []byte
	)
	err := s.db.QueryRowContext(ctx, querySubRoom, subRoomID, roomID, scope.EstablishmentID).Scan(
		&r.ID, &r.RoomID, &r.Name, &r.Board, &layout, &assignment, &r.ClassID, &r.TeacherID)
	if err != nil {
		return r, queryError(err, "sub-room", subRoomID)
	}
	if err := decodeJSONB("sub-room", subRoomID, layout, &r.Layout); err != nil {
		return r, err
	}
	if err := decodeJSONB("sub-room", subRoomID, assignment, &r.Assignment); err != nil {
		return r, err
	}
	return r, nil
}

func (s *Store) Class(ctx context.Context, scope session.Scope, classID string) (store.ClassRecord, error) {
	var r store.ClassRecord
	err := s.db.QueryRowContext(ctx, queryClass, classID, scope.EstablishmentID).Scan(&r.ID, &r.Name, &r.TeacherID)
	if err != nil {
		return r, queryError(err, "class", classID)
	}
	return r, nil
}

func (s *Store) Students(ctx context.Context, scope session.Scope, classID string) ([]store.StudentRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryStudents, classID, scope.EstablishmentID)
	if err != nil {
		return nil, queryError(err, "class", classID)
	}
	defer rows.Close()

	var out []store.StudentRecord
	for rows.Next() {
		var r store.StudentRecord
		if err := rows.Scan(&r.ID, &r.ClassID, &r.FirstName, &r.LastName, &r.Role, &r.Login); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "scan student of class %q", classID)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(err, "class", classID)
	}
	return out, nil
}

func (s *Store) Teacher(ctx context.Context, scope session.Scope, teacherID string) (store.TeacherRecord, error) {
	var r store.TeacherRecord
	err := s.db.QueryRowContext(ctx, queryTeacher, teacherID, scope.EstablishmentID).Scan(
		&r.ID, &r.Title, &r.FirstName, &r.LastName)
	if err != nil {
		return r, queryError(err, "teacher", teacherID)
	}
	return r, nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

func queryError(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.NotFound(kind, id)
	}
	return apperrors.Wrap(apperrors.ErrCodeInternal, err, "query %s %q", kind, id)
}

// decodeJSONB leaves dst untouched for NULL columns.
func decodeJSONB(kind, id string, data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "%s %q: malformed JSONB", kind, id)
	}
	return nil
}

var _ store.Store = (*Store)(nil)

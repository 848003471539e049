// Package file serves EduPlan records from a directory of TOML datasets,
// one file per establishment named <establishment-id>.toml:
//
//	[establishment]
//	id = "lycee-hugo"
//	name = "Lycée Victor Hugo"
//
//	[[rooms]]
//	id = "b12"
//	name = "B12"
//	class_id = "2nde-3"
//
//	[rooms.layout]
//	columns = [
//	  { id = "A", tables = 5, seats_per_table = 2 },
//	]
//
//	[rooms.assignment]
//	"1" = "s1"
//
//	[[students]]
//	id = "s1"
//	class_id = "2nde-3"
//	first_name = "Ada"
//	last_name = "Lovelace"
//
// Files are read on every call, so edits show up without a restart.
package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/session"
	"github.com/eduplan/seatplan/pkg/store"
)

// Ext is the dataset file extension.
const Ext = ".toml"

// Store implements [store.Store] on a directory.
type Store struct {
	dir string
}

// Open checks that dir is a directory.
func Open(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "open record directory")
	}
	if !info.IsDir() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "%s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store reads.
func (s *Store) Dir() string { return s.dir }

// Establishments lists the IDs of every dataset in the directory.
func (s *Store) Establishments() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "list %s", s.dir)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), Ext))
	}
	slices.Sort(ids)
	return ids, nil
}

// Load decodes the dataset of scope's establishment.
func (s *Store) Load(scope session.Scope) (store.Dataset, error) {
	if err := scope.Validate(); err != nil {
		return store.Dataset{}, err
	}
	path := filepath.Join(s.dir, scope.EstablishmentID+Ext)

	var ds store.Dataset
	if _, err := toml.DecodeFile(path, &ds); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ds, store.NotFound("establishment", scope.EstablishmentID)
		}
		return ds, apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "decode %s", filepath.Base(path))
	}
	if ds.Establishment.ID == "" {
		ds.Establishment.ID = scope.EstablishmentID
	}
	if ds.Establishment.ID != scope.EstablishmentID {
		return ds, apperrors.New(apperrors.ErrCodeInvalidRecord,
			"%s declares establishment %q", filepath.Base(path), ds.Establishment.ID)
	}
	return ds, nil
}

// Save writes ds to <dir>/<id>.toml.
func (s *Store) Save(ds store.Dataset) error {
	if err := apperrors.ValidateIdentifier("establishment", ds.Establishment.ID); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.dir, ds.Establishment.ID+Ext))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "create dataset")
	}
	if err := toml.NewEncoder(f).Encode(ds); err != nil {
		f.Close()
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode dataset")
	}
	return f.Close()
}

func (s *Store) memory(scope session.Scope) (*store.Memory, error) {
	ds, err := s.Load(scope)
	if err != nil {
		return nil, err
	}
	return store.NewMemory(ds), nil
}

func (s *Store) Establishment(ctx context.Context, scope session.Scope) (store.EstablishmentRecord, error) {
	m, err := s.memory(scope)
	if err != nil {
		return store.EstablishmentRecord{}, err
	}
	return m.Establishment(ctx, scope)
}

func (s *Store) Room(ctx context.Context, scope session.Scope, roomID string) (store.RoomRecord, error) {
	m, err := s.memory(scope)
	if err != nil {
		return store.RoomRecord{}, err
	}
	return m.Room(ctx, scope, roomID)
}

func (s *Store) SubRoom(ctx context.Context, scope session.Scope, roomID, subRoomID string) (store.SubRoomRecord, error) {
	m, err := s.memory(scope)
	if err != nil {
		return store.SubRoomRecord{}, err
	}
	return m.SubRoom(ctx, scope, roomID, subRoomID)
}

func (s *Store) Class(ctx context.Context, scope session.Scope, classID string) (store.ClassRecord, error) {
	m, err := s.memory(scope)
	if err != nil {
		return store.ClassRecord{}, err
	}
	return m.Class(ctx, scope, classID)
}

func (s *Store) Students(ctx context.Context, scope session.Scope, classID string) ([]store.StudentRecord, error) {
	m, err := s.memory(scope)
	if err != nil {
		return nil, err
	}
	return m.Students(ctx, scope, classID)
}

func (s *Store) Teacher(ctx context.Context, scope session.Scope, teacherID string) (store.TeacherRecord, error) {
	m, err := s.memory(scope)
	if err != nil {
		return store.TeacherRecord{}, err
	}
	return m.Teacher(ctx, scope, teacherID)
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)

package store

import (
	"context"
	"sync"

	"github.com/eduplan/seatplan/pkg/session"
)

// Dataset holds every record of one establishment.
type Dataset struct {
	Establishment EstablishmentRecord `json:"establishment" toml:"establishment"`
	Rooms         []RoomRecord        `json:"rooms" toml:"rooms"`
	SubRooms      []SubRoomRecord     `json:"subrooms" toml:"subrooms"`
	Classes       []ClassRecord       `json:"classes" toml:"classes"`
	Students      []StudentRecord     `json:"students" toml:"students"`
	Teachers      []TeacherRecord     `json:"teachers" toml:"teachers"`
}

// Memory serves datasets held in memory. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	datasets map[string]Dataset
}

// NewMemory returns a store serving the given datasets.
func NewMemory(datasets ...Dataset) *Memory {
	m := &Memory{datasets: make(map[string]Dataset, len(datasets))}
	for _, ds := range datasets {
		m.Put(ds)
	}
	return m
}

// Put adds or replaces the dataset of ds.Establishment.ID.
func (m *Memory) Put(ds Dataset) {
	m.mu.Lock()
	m.datasets[ds.Establishment.ID] = ds
	m.mu.Unlock()
}

func (m *Memory) dataset(scope session.Scope) (Dataset, error) {
	if err := scope.Validate(); err != nil {
		return Dataset{}, err
	}
	m.mu.RLock()
	ds, ok := m.datasets[scope.EstablishmentID]
	m.mu.RUnlock()
	if !ok {
		return Dataset{}, NotFound("establishment", scope.EstablishmentID)
	}
	return ds, nil
}

func (m *Memory) Establishment(_ context.Context, scope session.Scope) (EstablishmentRecord, error) {
	ds, err := m.dataset(scope)
	return ds.Establishment, err
}

func (m *Memory) Room(_ context.Context, scope session.Scope, roomID string) (RoomRecord, error) {
	ds, err := m.dataset(scope)
	if err != nil {
		return RoomRecord{}, err
	}
	for _, r := range ds.Rooms {
		if r.ID == roomID {
			r.EstablishmentID = scope.EstablishmentID
			return r, nil
		}
	}
	return RoomRecord{}, NotFound("room", roomID)
}

func (m *Memory) SubRoom(_ context.Context, scope session.Scope, roomID, subRoomID string) (SubRoomRecord, error) {
	ds, err := m.dataset(scope)
	if err != nil {
		return SubRoomRecord{}, err
	}
	for _, s := range ds.SubRooms {
		if s.ID == subRoomID && s.RoomID == roomID {
			return s, nil
		}
	}
	return SubRoomRecord{}, NotFound("sub-room", subRoomID)
}

func (m *Memory) Class(_ context.Context, scope session.Scope, classID string) (ClassRecord, error) {
	ds, err := m.dataset(scope)
	if err != nil {
		return ClassRecord{}, err
	}
	for _, c := range ds.Classes {
		if c.ID == classID {
			return c, nil
		}
	}
	return ClassRecord{}, NotFound("class", classID)
}

func (m *Memory) Students(_ context.Context, scope session.Scope, classID string) ([]StudentRecord, error) {
	ds, err := m.dataset(scope)
	if err != nil {
		return nil, err
	}
	var out []StudentRecord
	for _, s := range ds.Students {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) Teacher(_ context.Context, scope session.Scope, teacherID string) (TeacherRecord, error) {
	ds, err := m.dataset(scope)
	if err != nil {
		return TeacherRecord{}, err
	}
	for _, t := range ds.Teachers {
		if t.ID == teacherID {
			return t, nil
		}
	}
	return TeacherRecord{}, NotFound("teacher", teacherID)
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)

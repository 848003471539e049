package store

import (
	"context"
	"time"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/seating"
	"github.com/eduplan/seatplan/pkg/session"
)

// PlanRequest selects the room, and optionally a sub-room, to load.
type PlanRequest struct {
	RoomID    string
	SubRoomID string
	// GeneratedAt stamps the plan metadata. Zero means now.
	GeneratedAt time.Time
}

// ResolvePlan loads a room with its class, students and teacher and
// assembles the plan the exporter renders.
//
// A sub-room overrides the room's layout, board, assignment, class and
// teacher where it sets them. The class comes from the sub-room, else the
// room; the teacher from the sub-room, else the room, else the class. A
// missing teacher leaves the header field blank; every other missing
// record fails with NOT_FOUND.
func ResolvePlan(ctx context.Context, st Store, scope session.Scope, req PlanRequest) (seating.Plan, error) {
	if err := scope.Validate(); err != nil {
		return seating.Plan{}, err
	}
	if err := apperrors.ValidateIdentifier("room", req.RoomID); err != nil {
		return seating.Plan{}, err
	}
	if req.SubRoomID != "" {
		if err := apperrors.ValidateIdentifier("sub-room", req.SubRoomID); err != nil {
			return seating.Plan{}, err
		}
	}

	est, err := st.Establishment(ctx, scope)
	if err != nil {
		return seating.Plan{}, err
	}
	room, err := st.Room(ctx, scope, req.RoomID)
	if err != nil {
		return seating.Plan{}, err
	}
	cfg, err := ToConfiguration(room)
	if err != nil {
		return seating.Plan{}, err
	}

	name := room.Name
	board := room.Board
	rawAssignment := room.Assignment
	classID, teacherID := room.ClassID, room.TeacherID

	if req.SubRoomID != "" {
		sub, err := st.SubRoom(ctx, scope, req.RoomID, req.SubRoomID)
		if err != nil {
			return seating.Plan{}, err
		}
		if err := Validate("sub-room", sub); err != nil {
			return seating.Plan{}, err
		}
		name += " / " + sub.Name
		if sub.Layout != nil {
			if cfg, err = DecodeLayout(sub.Layout); err != nil {
				return seating.Plan{}, err
			}
		}
		if sub.Board != "" {
			board = sub.Board
		}
		if sub.Assignment != nil {
			rawAssignment = sub.Assignment
		}
		if sub.ClassID != "" {
			classID = sub.ClassID
		}
		if sub.TeacherID != "" {
			teacherID = sub.TeacherID
		}
	}

	assignment, err := ToAssignment("room "+room.ID, rawAssignment)
	if err != nil {
		return seating.Plan{}, err
	}

	meta := seating.Metadata{
		Room:          name,
		Establishment: est.Name,
		GeneratedAt:   req.GeneratedAt,
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}

	var occupants []seating.Occupant
	if classID != "" {
		class, err := st.Class(ctx, scope, classID)
		if err != nil {
			return seating.Plan{}, err
		}
		if err := Validate("class", class); err != nil {
			return seating.Plan{}, err
		}
		meta.Class = class.Name
		if teacherID == "" {
			teacherID = class.TeacherID
		}
		students, err := st.Students(ctx, scope, classID)
		if err != nil {
			return seating.Plan{}, err
		}
		if occupants, err = ToOccupants(students); err != nil {
			return seating.Plan{}, err
		}
	}

	if teacherID != "" {
		teacher, err := st.Teacher(ctx, scope, teacherID)
		switch {
		case apperrors.Is(err, apperrors.ErrCodeNotFound):
		case err != nil:
			return seating.Plan{}, err
		default:
			meta.Teacher = teacher.DisplayName()
		}
	}

	return seating.Plan{
		Configuration: cfg,
		Board:         seating.BoardPosition(board),
		Assignment:    assignment,
		Occupants:     occupants,
		Metadata:      meta,
	}, nil
}

// Package mongo reads EduPlan records from MongoDB.
//
// Each record kind has its own collection. Documents carry an
// establishment_id field that every lookup filters on.
package mongo

import (
	"context"
	"encoding/json"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/session"
	"github.com/eduplan/seatplan/pkg/store"
)

// Collection names.
const (
	CollectionEstablishments = "establishments"
	CollectionRooms          = "rooms"
	CollectionSubRooms       = "sub_rooms"
	CollectionClasses        = "classes"
	CollectionStudents       = "students"
	CollectionTeachers       = "teachers"
)

// Store implements [store.Store] on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri, pings the primary and uses database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "ping mongo")
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// roomDoc keeps the layout raw so it can be normalised to JSON types.
type roomDoc struct {
	ID              string            `bson:"_id"`
	EstablishmentID string            `bson:"establishment_id"`
	RoomID          string            `bson:"room_id,omitempty"`
	Name            string            `bson:"name"`
	Board           string            `bson:"board"`
	Layout          bson.Raw          `bson:"layout,omitempty"`
	Assignment      map[string]string `bson:"assignment,omitempty"`
	ClassID         string            `bson:"class_id"`
	TeacherID       string            `bson:"teacher_id"`
}

// layout converts the embedded layout document into plain JSON values.
// Relaxed extended JSON prints BSON integers and doubles as numbers.
func (d roomDoc) layout(kind string) (map[string]any, error) {
	if len(d.Layout) == 0 {
		return nil, nil
	}
	data, err := bson.MarshalExtJSON(d.Layout, false, false)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "%s %q: layout", kind, d.ID)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "%s %q: layout", kind, d.ID)
	}
	return m, nil
}

func (d roomDoc) room() (store.RoomRecord, error) {
	layout, err := d.layout("room")
	return store.RoomRecord{
		ID:              d.ID,
		EstablishmentID: d.EstablishmentID,
		Name:            d.Name,
		Board:           d.Board,
		Layout:          layout,
		Assignment:      d.Assignment,
		ClassID:         d.ClassID,
		TeacherID:       d.TeacherID,
	}, err
}

func (d roomDoc) subRoom() (store.SubRoomRecord, error) {
	layout, err := d.layout("sub-room")
	return store.SubRoomRecord{
		ID:         d.ID,
		RoomID:     d.RoomID,
		Name:       d.Name,
		Board:      d.Board,
		Layout:     layout,
		Assignment: d.Assignment,
		ClassID:    d.ClassID,
		TeacherID:  d.TeacherID,
	}, err
}

func scoped(scope session.Scope, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "establishment_id", Value: scope.EstablishmentID}}
}

func (s *Store) findOne(ctx context.Context, coll string, filter bson.D, kind, id string, dst any) error {
	err := s.db.Collection(coll).FindOne(ctx, filter).Decode(dst)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.NotFound(kind, id)
	case err != nil:
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "find %s %q", kind, id)
	}
	return nil
}

func (s *Store) Establishment(ctx context.Context, scope session.Scope) (store.EstablishmentRecord, error) {
	var r store.EstablishmentRecord
	filter := bson.D{{Key: "_id", Value: scope.EstablishmentID}}
	err := s.findOne(ctx, CollectionEstablishments, filter, "establishment", scope.EstablishmentID, &r)
	return r, err
}

func (s *Store) Room(ctx context.Context, scope session.Scope, roomID string) (store.RoomRecord, error) {
	var d roomDoc
	if err := s.findOne(ctx, CollectionRooms, scoped(scope, roomID), "room", roomID, &d); err != nil {
		return store.RoomRecord{}, err
	}
	return d.room()
}

func (s *Store) SubRoom(ctx context.Context, scope session.Scope, roomID, subRoomID string) (store.SubRoomRecord, error) {
	var d roomDoc
	filter := append(scoped(scope, subRoomID), bson.E{Key: "room_id", Value: roomID})
	if err := s.findOne(ctx, CollectionSubRooms, filter, "sub-room", subRoomID, &d); err != nil {
		return store.SubRoomRecord{}, err
	}
	return d.subRoom()
}

func (s *Store) Class(ctx context.Context, scope session.Scope, classID string) (store.ClassRecord, error) {
	var r store.ClassRecord
	err := s.findOne(ctx, CollectionClasses, scoped(scope, classID), "class", classID, &r)
	return r, err
}

func (s *Store) Students(ctx context.Context, scope session.Scope, classID string) ([]store.StudentRecord, error) {
	filter := bson.D{{Key: "class_id", Value: classID}, {Key: "establishment_id", Value: scope.EstablishmentID}}
	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.db.Collection(CollectionStudents).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "find students of class %q", classID)
	}
	var out []store.StudentRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "decode students of class %q", classID)
	}
	return out, nil
}

func (s *Store) Teacher(ctx context.Context, scope session.Scope, teacherID string) (store.TeacherRecord, error) {
	var r store.TeacherRecord
	err := s.findOne(ctx, CollectionTeachers, scoped(scope, teacherID), "teacher", teacherID, &r)
	return r, err
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ store.Store = (*Store)(nil)

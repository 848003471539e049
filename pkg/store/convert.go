package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/seating"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("board", func(fl validator.FieldLevel) bool {
		_, err := seating.ParseBoardPosition(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks a record against its struct tags. Failures carry
// INVALID_RECORD and name the first offending field.
func Validate(kind string, record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err,
			"%s record: field %q failed %q", kind, fe.Field(), fe.Tag())
	}
	return apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "%s record", kind)
}

// NotFound builds the error backends return for a missing record.
func NotFound(kind, id string) error {
	return apperrors.New(apperrors.ErrCodeNotFound, "%s %q not found", kind, id)
}

// Layout payload keys accepted for each column field, in lookup order.
// Room editors have written all of these over time.
var (
	columnIDKeys     = []string{"id", "name", "label"}
	columnTablesKeys = []string{"tables", "tableCount", "table_count", "rows"}
	columnSeatsKeys  = []string{"seats_per_table", "seatsPerTable", "studentsPerTable", "students_per_table", "seats"}
)

// DecodeLayout converts a stored layout payload into a configuration.
//
// The payload is an object with a "columns" array. Counts may be integers,
// integral floats or numeric strings. A column without an id is named by
// its position (A, B, ...). A nil or empty payload is an empty
// configuration. Counts are not range-checked here; that is
// [seating.Configuration.Validate]'s job.
func DecodeLayout(raw map[string]any) (seating.Configuration, error) {
	if len(raw) == 0 {
		return seating.Configuration{}, nil
	}
	rawCols, ok := raw["columns"]
	if !ok || rawCols == nil {
		return seating.Configuration{}, nil
	}
	items, ok := asSlice(rawCols)
	if !ok {
		return seating.Configuration{}, apperrors.New(apperrors.ErrCodeInvalidRecord,
			"layout columns must be an array, got %T", rawCols)
	}

	cfg := seating.Configuration{Columns: make([]seating.Column, 0, len(items))}
	for i, item := range items {
		m, ok := asMap(item)
		if !ok {
			return seating.Configuration{}, apperrors.New(apperrors.ErrCodeInvalidRecord,
				"layout column %d must be an object, got %T", i+1, item)
		}
		col, err := decodeColumn(i, m)
		if err != nil {
			return seating.Configuration{}, err
		}
		cfg.Columns = append(cfg.Columns, col)
	}
	return cfg, nil
}

func decodeColumn(i int, m map[string]any) (seating.Column, error) {
	col := seating.Column{ID: columnName(i)}
	if v, _, ok := lookup(m, columnIDKeys); ok {
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			col.ID = s
		}
	}

	var err error
	if col.Tables, err = intField(i, m, columnTablesKeys); err != nil {
		return col, err
	}
	if col.SeatsPerTable, err = intField(i, m, columnSeatsKeys); err != nil {
		return col, err
	}
	return col, nil
}

func intField(i int, m map[string]any, keys []string) (int, error) {
	v, key, ok := lookup(m, keys)
	if !ok {
		return 0, apperrors.New(apperrors.ErrCodeInvalidRecord,
			"layout column %d: missing %q", i+1, keys[0])
	}
	n, err := toInt(v)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err,
			"layout column %d: %q", i+1, key)
	}
	return n, nil
}

func lookup(m map[string]any, keys []string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

// columnName returns A..Z, then AA, AB, ...
func columnName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return floatToInt(f)
	default:
		return 0, fmt.Errorf("unsupported count type %T", v)
	}
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	return int(f), nil
}

// asSlice accepts []any as well as the typed slices produced by the TOML
// and BSON decoders.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// ToOccupant validates a student record and converts it.
func ToOccupant(s StudentRecord) (seating.Occupant, error) {
	if err := Validate("student", s); err != nil {
		return seating.Occupant{}, err
	}
	if err := apperrors.ValidateDisplayName("student first name", s.FirstName); err != nil {
		return seating.Occupant{}, err
	}
	if err := apperrors.ValidateDisplayName("student last name", s.LastName); err != nil {
		return seating.Occupant{}, err
	}
	return seating.Occupant{
		ID:        s.ID,
		FirstName: strings.TrimSpace(s.FirstName),
		LastName:  strings.TrimSpace(s.LastName),
		Role:      seating.ParseRole(s.Role),
		Login:     s.Login,
	}, nil
}

// ToOccupants converts every record, failing on the first malformed one.
func ToOccupants(records []StudentRecord) ([]seating.Occupant, error) {
	out := make([]seating.Occupant, 0, len(records))
	for _, r := range records {
		o, err := ToOccupant(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// ToAssignment converts a stored seat map. Non-numeric seat keys make the
// record malformed.
func ToAssignment(kind string, raw map[string]string) (seating.Assignment, error) {
	a, err := seating.ParseAssignment(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRecord, err, "%s assignment", kind)
	}
	return a, nil
}

// ToConfiguration validates a room record and decodes its layout.
func ToConfiguration(r RoomRecord) (seating.Configuration, error) {
	if err := Validate("room", r); err != nil {
		return seating.Configuration{}, err
	}
	return DecodeLayout(r.Layout)
}

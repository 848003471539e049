package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduplan/seatplan/pkg/cache"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/pipeline"
	"github.com/eduplan/seatplan/pkg/session"
	"github.com/eduplan/seatplan/pkg/store"
)

const planBody = `{
  "plan": {
    "configuration": {"columns": [
      {"id": "A", "tables": 5, "seats_per_table": 2},
      {"id": "B", "tables": 5, "seats_per_table": 2},
      {"id": "C", "tables": 4, "seats_per_table": 2}
    ]},
    "board": "top",
    "assignment": {"1": "s1", "12": "s2"},
    "occupants": [
      {"id": "s1", "first_name": "Ada", "last_name": "Lovelace", "role": "delegate"},
      {"id": "s2", "first_name": "Alan", "last_name": "Turing"}
    ],
    "metadata": {"room": "B12", "class": "2nde 3", "generated_at": "2026-09-01T08:00:00Z"}
  },
  "format": "json"
}`

func testDataset() store.Dataset {
	return store.Dataset{
		Establishment: store.EstablishmentRecord{ID: "lycee-hugo", Name: "Lycée Victor Hugo"},
		Rooms: []store.RoomRecord{{
			ID:   "b12",
			Name: "B12",
			Layout: map[string]any{"columns": []any{
				map[string]any{"id": "A", "tables": 2, "seats_per_table": 2},
			}},
			Assignment: map[string]string{"1": "s1"},
			ClassID:    "2nde-3",
		}},
		Classes: []store.ClassRecord{{ID: "2nde-3", Name: "2nde 3"}},
		Students: []store.StudentRecord{
			{ID: "s1", ClassID: "2nde-3", FirstName: "Ada", LastName: "Lovelace"},
			{ID: "s2", ClassID: "2nde-3", FirstName: "Alan", LastName: "Turing"},
		},
	}
}

type fixture struct {
	handler  http.Handler
	sessions *session.MemoryStore
	token    string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	runner := pipeline.NewRunner(cache.NewMemoryCache(), cache.NewDefaultKeyer(), logger)
	sessions := session.NewMemoryStore()
	sess, err := sessions.Issue(context.Background(), session.Scope{EstablishmentID: "lycee-hugo", UserID: "t1"}, "Mme Curie")
	require.NoError(t, err)

	srv := NewServer(runner, store.NewMemory(testDataset()), append([]Option{WithSessions(sessions), WithLogger(logger)}, opts...)...)
	return &fixture{handler: srv.Router(), sessions: sessions, token: sess.ID}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if f.token != "" {
		r.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	f.token = ""
	w := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"version":`)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRenderPlan(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/v1/plans/render", planBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "2/28", w.Header().Get(HeaderOccupancy))
	assert.Equal(t, "miss", w.Header().Get(HeaderCache))
	assert.NotEmpty(t, w.Header().Get(HeaderPlanHash))

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Contains(t, out, "seats")

	again := f.do(http.MethodPost, "/v1/plans/render", planBody)
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "hit", again.Header().Get(HeaderCache))
	assert.Equal(t, w.Header().Get(HeaderPlanHash), again.Header().Get(HeaderPlanHash))
}

func TestRenderPlanErrors(t *testing.T) {
	f := newFixture(t)

	tooMany := strings.Replace(planBody, `"tables": 4`, `"tables": 400`, 1)
	badSeat := strings.Replace(planBody, `"12": "s2"`, `"99": "s2"`, 1)
	badFormat := strings.Replace(planBody, `"format": "json"`, `"format": "gif"`, 1)
	wrapping := strings.Replace(planBody, `"tables": 4, "seats_per_table": 2`,
		`"tables": 4294967296, "seats_per_table": 4294967296`, 1)

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"plan":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"plan": {}, "colour": "red"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"too many seats", tooMany, http.StatusUnprocessableEntity, errors.ErrCodeInvalidConfiguration},
		{"seat count overflows", wrapping, http.StatusUnprocessableEntity, errors.ErrCodeInvalidConfiguration},
		{"seat out of range", badSeat, http.StatusUnprocessableEntity, errors.ErrCodeInvalidAssignment},
		{"unknown format", badFormat, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/v1/plans/render", tt.body)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.Equal(t, w.Header().Get(HeaderRequestID), resp.RequestID)
		})
	}
}

func TestRoomPlan(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/v1/rooms/b12/plan?format=svg", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "1/4", w.Header().Get(HeaderOccupancy))
	assert.Contains(t, w.Body.String(), "<svg")

	missing := f.do(http.MethodGet, "/v1/rooms/z99/plan?format=svg", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, errors.ErrCodeNotFound, decodeError(t, missing).Error)
}

func TestRoomPlanRepeatHitsCache(t *testing.T) {
	stamps := []time.Time{
		time.Date(2026, 9, 1, 8, 15, 5, 0, time.UTC),
		time.Date(2026, 9, 1, 8, 15, 48, 0, time.UTC),
		time.Date(2026, 9, 1, 8, 16, 2, 0, time.UTC),
	}
	calls := 0
	f := newFixture(t, WithClock(func() time.Time {
		now := stamps[calls]
		calls++
		return now
	}))

	first := f.do(http.MethodGet, "/v1/rooms/b12/plan?format=svg", "")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "miss", first.Header().Get(HeaderCache))

	second := f.do(http.MethodGet, "/v1/rooms/b12/plan?format=svg", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get(HeaderCache))
	assert.Equal(t, first.Header().Get(HeaderPlanHash), second.Header().Get(HeaderPlanHash))
	assert.Equal(t, first.Body.String(), second.Body.String())

	later := f.do(http.MethodGet, "/v1/rooms/b12/plan?format=svg", "")
	require.Equal(t, http.StatusOK, later.Code)
	assert.Equal(t, "miss", later.Header().Get(HeaderCache), "a new minute prints a new date")
	assert.Contains(t, later.Body.String(), "01/09/2026 08:16")
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"unknown", "not-a-session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.token = tt.token
			w := f.do(http.MethodGet, "/v1/rooms/b12/plan", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, errors.ErrCodeUnauthorized, decodeError(t, w).Error)
		})
	}
}

func TestSessionsAreScopedByEstablishment(t *testing.T) {
	f := newFixture(t)
	other, err := f.sessions.Issue(context.Background(), session.Scope{EstablishmentID: "college-curie"}, "Visitor")
	require.NoError(t, err)

	f.token = other.ID
	w := f.do(http.MethodGet, "/v1/rooms/b12/plan?format=svg", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocalEstablishment(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), log.New(&bytes.Buffer{}))
	srv := NewServer(runner, store.NewMemory(testDataset()), WithLocalEstablishment("lycee-hugo"))

	r := httptest.NewRequest(http.MethodGet, "/v1/rooms/b12/plan?format=json", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestNoAuthConfigured(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), log.New(&bytes.Buffer{}))
	srv := NewServer(runner, store.NewMemory(), WithLogger(log.New(&bytes.Buffer{})))

	r := httptest.NewRequest(http.MethodGet, "/v1/rooms/b12/plan", nil)
	r.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCredentialArchive(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/v1/credentials/archive", `{"room_id": "b12", "format": "svg"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "credentials-svg.zip")
	id := w.Header().Get(HeaderArchiveID)
	require.NotEmpty(t, id)

	again := f.do(http.MethodGet, "/v1/credentials/archive/"+id+"?format=svg", "")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, w.Body.Bytes(), again.Body.Bytes())

	wrongFormat := f.do(http.MethodGet, "/v1/credentials/archive/"+id+"?format=pdf", "")
	assert.Equal(t, http.StatusNotFound, wrongFormat.Code)
}

func TestCredentialArchiveErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"no occupants", http.MethodPost, "/v1/credentials/archive", `{"format": "svg"}`, http.StatusBadRequest},
		{"bad format", http.MethodPost, "/v1/credentials/archive", `{"room_id": "b12", "format": "docx"}`, http.StatusBadRequest},
		{"unknown room", http.MethodPost, "/v1/credentials/archive", `{"room_id": "z99"}`, http.StatusNotFound},
		{"unknown archive", http.MethodGet, "/v1/credentials/archive/deadbeef?format=svg", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidFormat, http.StatusBadRequest},
		{errors.ErrCodeInvalidConfiguration, http.StatusUnprocessableEntity},
		{errors.ErrCodeInvalidAssignment, http.StatusUnprocessableEntity},
		{errors.ErrCodeInvalidRecord, http.StatusInternalServerError},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{errors.ErrCodeRenderFailure, http.StatusBadGateway},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.code), tt.code)
	}
}

func TestWriteErrorMasksServerFailures(t *testing.T) {
	var logs bytes.Buffer
	srv := NewServer(nil, nil, WithLogger(log.New(&logs)))

	tests := []struct {
		err     error
		status  int
		message string
	}{
		{errors.New(errors.ErrCodeRenderFailure, "rsvg-convert: /usr/bin/rsvg-convert exited 1"), http.StatusBadGateway, "internal error"},
		{errors.New(errors.ErrCodeInvalidRecord, "room b12: layout column 3 is not an object"), http.StatusInternalServerError, "internal error"},
		{errors.New(errors.ErrCodeInternal, "dial tcp 10.0.0.4:5432: refused"), http.StatusInternalServerError, "internal error"},
		{errors.New(errors.ErrCodeNotFound, "room %q not found", "z99"), http.StatusNotFound, `room "z99" not found`},
	}
	for _, tt := range tests {
		code := errors.GetCode(tt.err)
		t.Run(string(code), func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.writeError(w, httptest.NewRequest(http.MethodGet, "/v1/rooms/b12/plan", nil), tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, code, resp.Error)
			assert.Equal(t, tt.message, resp.Message)
			assert.NotContains(t, w.Body.String(), "/usr/bin")
		})
	}
	assert.Contains(t, logs.String(), "rsvg-convert", "the cause is still logged")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer "))
}

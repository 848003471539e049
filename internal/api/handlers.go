package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/pipeline"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
	"github.com/eduplan/seatplan/pkg/store"
)

// Response headers describing a rendered plan.
const (
	HeaderOccupancy = "X-Occupancy"
	HeaderPlanHash  = "X-Plan-Hash"
	HeaderCache     = "X-Cache"
	HeaderArchiveID = "X-Archive-ID"
)

type renderRequest struct {
	Plan    seating.Plan `json:"plan"`
	Format  string       `json:"format,omitempty"`
	Title   string       `json:"title,omitempty"`
	Refresh bool         `json:"refresh,omitempty"`
}

func (s *Server) handleRenderPlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Plan.Metadata.GeneratedAt.IsZero() {
		req.Plan.Metadata.GeneratedAt = s.now()
	}
	s.render(w, r, req.Plan, req.Format, req.Title, req.Refresh)
}

func (s *Server) handleRoomPlan(w http.ResponseWriter, r *http.Request) {
	scope := scopeFrom(r.Context())
	q := r.URL.Query()

	p, err := store.ResolvePlan(r.Context(), s.store, scope, store.PlanRequest{
		RoomID:      chi.URLParam(r, "roomID"),
		SubRoomID:   q.Get("subroom"),
		GeneratedAt: s.now(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	refresh, _ := strconv.ParseBool(q.Get("refresh"))
	s.render(w, r, p, q.Get("format"), q.Get("title"), refresh)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, p seating.Plan, format, title string, refresh bool) {
	if format == "" {
		format = pipeline.DefaultFormat
	}
	policy := s.policy
	res, err := s.runner.Execute(r.Context(), scopeFrom(r.Context()), p, pipeline.Options{
		Formats: []string{format},
		Title:   title,
		Policy:  &policy,
		Refresh: refresh,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Options lower-case the format.
	for f, data := range res.Artifacts {
		cacheState := "miss"
		if res.CacheInfo.RenderHit {
			cacheState = "hit"
		}
		w.Header().Set("Content-Type", pipeline.ContentTypes[f])
		w.Header().Set(HeaderOccupancy, res.Stats.Occupancy())
		w.Header().Set(HeaderPlanHash, res.PlanHash)
		w.Header().Set(HeaderCache, cacheState)
		if f == pipeline.FormatXLSX || f == pipeline.FormatPDF {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "seating-plan."+f))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

type archiveRequest struct {
	// Either a stored room ...
	RoomID    string `json:"room_id,omitempty"`
	SubRoomID string `json:"subroom_id,omitempty"`
	// ... or explicit occupants.
	Occupants []seating.Occupant `json:"occupants,omitempty"`
	Metadata  seating.Metadata   `json:"metadata,omitempty"`

	Format string `json:"format,omitempty"` // svg or pdf
}

func (s *Server) handleCreateArchive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req archiveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := sink.ParseCardFormat(req.Format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	scope := scopeFrom(r.Context())
	occupants, meta := req.Occupants, req.Metadata
	if req.RoomID != "" {
		p, err := store.ResolvePlan(r.Context(), s.store, scope, store.PlanRequest{RoomID: req.RoomID, SubRoomID: req.SubRoomID, GeneratedAt: s.now()})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		occupants, meta = p.Occupants, p.Metadata
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = s.now()
	}

	res, err := s.runner.Archive(r.Context(), scope, pipeline.ArchiveRequest{
		Occupants: occupants,
		Metadata:  meta,
		Format:    format,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArchive(w, res.ID, res.ArchiveName(), res.Data)
}

func (s *Server) handleFetchArchive(w http.ResponseWriter, r *http.Request) {
	format, err := sink.ParseCardFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "archiveID")
	if err := errors.ValidateIdentifier("archive", id); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.runner.FetchArchive(r.Context(), scopeFrom(r.Context()), id, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res := pipeline.ArchiveResult{ID: id, Format: format}
	writeArchive(w, id, res.ArchiveName(), data)
}

func writeArchive(w http.ResponseWriter, id, name string, data []byte) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set(HeaderArchiveID, id)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

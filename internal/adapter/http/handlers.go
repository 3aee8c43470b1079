package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/harbinger/internal/analysis"
	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/imaging"
	"github.com/couchcryptid/harbinger/internal/store"
)

const defaultListLimit = 100

var errImageRequired = errors.New("image file is required")

type verifyRequest struct {
	Decision   domain.Decision `json:"decision"`
	VerifiedBy string          `json:"verified_by"`
	Notes      string          `json:"notes"`
}

type assignRequest struct {
	Volunteer string `json:"volunteer"`
}

type incidentResponse struct {
	Incident domain.Incident `json:"incident"`
	Actions  []domain.Action `json:"actions"`
}

type reportResponse struct {
	Incident domain.Incident `json:"incident"`
	Created  bool            `json:"created"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.deps.MaxUploadBytes); err != nil {
		s.writeBodyError(w, err)
		return
	}
	image, err := formFile(r, "image")
	if err != nil {
		s.writeBodyError(w, err)
		return
	}
	if len(image) == 0 {
		writeError(w, http.StatusBadRequest, errImageRequired.Error())
		return
	}

	result, err := s.deps.Triager.Analyze(r.Context(), image, r.FormValue("location"), r.FormValue("context"))
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		case errors.Is(err, imaging.ErrMalformed):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("analyze image failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCreateReport accepts a multipart form (with an optional "image"
// file) or a JSON report body, triages it and stores the incident.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes)
	report, err := s.decodeReport(r)
	if err != nil {
		s.writeBodyError(w, err)
		return
	}

	inc, err := s.deps.Triager.Triage(r.Context(), report)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyReport) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("triage report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "triage failed")
		return
	}

	created, err := s.loader.Save(r.Context(), inc)
	if err != nil {
		s.logger.Error("store incident failed", "error", err, "id", inc.ID)
		writeError(w, http.StatusInternalServerError, "store failed")
		return
	}

	status := http.StatusCreated
	if !created {
		// Return the stored record, which may already carry workflow state.
		if inc, err = s.deps.Store.Get(r.Context(), inc.ID); err != nil {
			s.writeStoreError(w, err)
			return
		}
		status = http.StatusOK
	}
	s.logger.Info("report triaged", "id", inc.ID, "priority", inc.Priority, "created", created)
	writeJSON(w, status, reportResponse{Incident: inc, Created: created})
}

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.Filter{Limit: defaultListLimit}
	if v := q.Get("unverified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unverified must be a boolean")
			return
		}
		f.Unverified = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	incidents, err := s.deps.Store.List(r.Context(), f)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	writeJSON(w, http.StatusOK, incidents)
}

func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	inc, err := s.deps.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeIncident(r.Context(), w, inc)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeBodyError(w, err)
		return
	}
	inc, err := s.deps.Store.Verify(r.Context(), r.PathValue("id"), req.Decision, req.VerifiedBy, req.Notes)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.logger.Info("incident verified", "id", inc.ID, "decision", req.Decision, "by", inc.VerifiedBy)
	s.writeIncident(r.Context(), w, inc)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeBodyError(w, err)
		return
	}
	inc, err := s.deps.Store.Assign(r.Context(), r.PathValue("id"), req.Volunteer)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.logger.Info("volunteer assigned", "id", inc.ID, "volunteer", inc.Volunteer)
	s.writeIncident(r.Context(), w, inc)
}

// handlePriority scores query parameters without storing anything.
// authenticity defaults to 75 and ocean_hazard_level to the level implied by
// disaster_type.
func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	severity := domain.NormalizeSeverity(q.Get("severity"))
	disaster := domain.NormalizeDisasterType(q.Get("disaster_type"))

	var err error
	authenticity := 75.0
	if v := q.Get("authenticity"); v != "" {
		authenticity, err = strconv.ParseFloat(v, 64)
		if err != nil || authenticity < 0 || authenticity > 100 {
			writeError(w, http.StatusBadRequest, "authenticity must be a number between 0 and 100")
			return
		}
	}
	level := analysis.OceanHazardLevel(disaster)
	if v := q.Get("ocean_hazard_level"); v != "" {
		level, err = strconv.Atoi(v)
		if err != nil || level < 0 || level > 3 {
			writeError(w, http.StatusBadRequest, "ocean_hazard_level must be between 0 and 3")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"severity":           severity,
		"disaster_type":      disaster,
		"authenticity":       authenticity,
		"ocean_hazard_level": level,
		"priority":           analysis.Priority(severity, disaster, authenticity, level),
	})
}

func (s *Server) writeIncident(ctx context.Context, w http.ResponseWriter, inc domain.Incident) {
	actions, err := s.deps.Store.Actions(ctx, inc.ID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incidentResponse{Incident: inc, Actions: actions})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidDecision), errors.Is(err, domain.ErrMissingActor):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) decodeReport(r *http.Request) (domain.Report, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var report domain.Report
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			return domain.Report{}, fmt.Errorf("decode report: %w", err)
		}
		return report, nil
	}

	if err := r.ParseMultipartForm(s.deps.MaxUploadBytes); err != nil {
		return domain.Report{}, err
	}
	image, err := formFile(r, "image")
	if err != nil {
		return domain.Report{}, err
	}
	return domain.Report{
		Reporter:          r.FormValue("reporter"),
		Location:          r.FormValue("location"),
		DisasterType:      r.FormValue("disaster_type"),
		Severity:          r.FormValue("severity"),
		Description:       r.FormValue("description"),
		Context:           r.FormValue("context"),
		ContactShared:     formBool(r, "contact_shared"),
		OceanAlerts:       formBool(r, "ocean_alerts"),
		EmergencyPriority: formBool(r, "emergency_priority"),
		Image:             image,
	}, nil
}

// formFile reads an uploaded file. A missing field yields nil.
func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formBool(r *http.Request, field string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(field))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// internal/infra/reportapi/handler.go
package reportapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"attendance_dashboard/internal/app"
	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/query"
	"attendance_dashboard/internal/infra/reportclient"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxRequestBytes = 4 << 10

// Handler serves per-student attendance reports from a student directory.
// It is the remote counterpart of the dashboard's local lookup.
type Handler struct {
	directory attendance.StudentDirectory
	logger    *logrus.Entry
	validate  *validator.Validate
}

// NewHandler creates a new report Handler.
func NewHandler(directory attendance.StudentDirectory, logger *logrus.Entry) *Handler {
	return &Handler{
		directory: directory,
		logger:    logger.WithField("component", "report_api"),
		validate:  validator.New(),
	}
}

// ReportRequest is the body of POST /report.
type ReportRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// ReportResponse is the body returned for a matched student.
type ReportResponse struct {
	Name    string `json:"name"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes returns a chi.Router with the report and liveness routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Post("/report", h.Report)
	r.Get("/health/live", h.Live)
	return r
}

// Report looks up one student. A match returns 200 with the record; no match
// returns 204 with an empty body.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	logCtx := h.logger.WithField("request_id", r.Header.Get(reportclient.RequestIDHeader))

	var req ReportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		logCtx.WithError(err).Warn("Malformed report request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}
	req.Query = query.Normalize(req.Query)
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		msg := "invalid request"
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = "query failed " + verrs[0].Tag() + " validation"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	students, err := h.directory.ListStudents(r.Context())
	if err != nil {
		logCtx.WithError(err).Error("Failed to list students")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "student directory unavailable"})
		return
	}

	_, rec, err := app.NewLocalStrategy(students).Lookup(r.Context(), req.Query)
	if err != nil {
		logCtx.WithField("query", req.Query).Info("No student matches report query")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logCtx.WithFields(logrus.Fields{"query": req.Query, "name": rec.Name}).Debug("Report served")
	writeJSON(w, http.StatusOK, ReportResponse{
		Name:    rec.Name,
		Present: rec.Present,
		Absent:  rec.Absent,
		Late:    rec.Late,
	})
}

// Live reports that the service is up.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// requestID keeps the caller's X-Request-ID or assigns a new one, and echoes it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(reportclient.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(reportclient.RequestIDHeader, id)
		}
		w.Header().Set(reportclient.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Package http exposes the course ingestion service over REST.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
	"github.com/adaptlearn/course-ingest/internal/observability/metrics"
)

const headerUserID = "X-User-Id"

// Router wires the inbound ports to their HTTP routes. Optional
// collaborators (enroller, questions) may be nil when their backing
// infrastructure is not configured; their routes answer 503.
type Router struct {
	service   string
	processor ports.CourseProcessor
	queries   ports.CourseQueryService
	enroller  ports.CourseEnroller
	questions ports.QuestionService
	pipeline  *metrics.PipelineMetrics
}

func NewRouter(
	service string,
	processor ports.CourseProcessor,
	queries ports.CourseQueryService,
	enroller ports.CourseEnroller,
	questions ports.QuestionService,
	pipeline *metrics.PipelineMetrics,
) *Router {
	return &Router{
		service:   service,
		processor: processor,
		queries:   queries,
		enroller:  enroller,
		questions: questions,
		pipeline:  pipeline,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.handleHealth)
	mux.HandleFunc("POST /v1/courses/{courseId}/process", rt.handleProcess)
	mux.HandleFunc("GET /v1/courses", rt.handleListCourses)
	mux.HandleFunc("GET /v1/courses/{courseId}", rt.handleGetCourse)
	mux.HandleFunc("GET /v1/courses/{courseId}/files/{fileId}/link", rt.handleDownloadLink)
	mux.HandleFunc("GET /v1/courses/by-code/{code}", rt.handleCourseByCode)
	mux.HandleFunc("POST /v1/enrollments", rt.handleEnroll)
	mux.HandleFunc("POST /v1/courses/{courseId}/questions", rt.handleGenerateQuestions)

	return mux
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type processRequest struct {
	OwnerID string                  `json:"ownerId"`
	Title   string                  `json:"title"`
	Size    domain.CourseSize       `json:"size"`
	Files   []domain.FileDescriptor `json:"files"`
}

func (rt *Router) handleProcess(w http.ResponseWriter, r *http.Request) {
	callerID, ok := rt.callerID(w, r)
	if !ok {
		return
	}

	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode request", err))
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = callerID
	}

	cmd := ports.ProcessCommand{
		CourseID: r.PathValue("courseId"),
		OwnerID:  req.OwnerID,
		CallerID: callerID,
		Title:    req.Title,
		Size:     req.Size,
		Files:    req.Files,
	}

	start := time.Now()
	if rt.pipeline != nil {
		rt.pipeline.StartBatch()
	}
	manifest, err := rt.processor.ProcessCourse(r.Context(), cmd)
	if rt.pipeline != nil {
		rt.pipeline.FinishBatch(rt.service, time.Since(start), manifest, err)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func (rt *Router) handleListCourses(w http.ResponseWriter, r *http.Request) {
	callerID, ok := rt.callerID(w, r)
	if !ok {
		return
	}
	ownerID := r.URL.Query().Get("owner")
	if ownerID == "" {
		ownerID = callerID
	}

	manifests, err := rt.queries.ListCourses(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": manifests})
}

func (rt *Router) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	callerID, ok := rt.callerID(w, r)
	if !ok {
		return
	}
	ownerID := r.URL.Query().Get("owner")
	if ownerID == "" {
		ownerID = callerID
	}

	manifest, err := rt.queries.GetCourse(r.Context(), ownerID, r.PathValue("courseId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func (rt *Router) handleDownloadLink(w http.ResponseWriter, r *http.Request) {
	callerID, ok := rt.callerID(w, r)
	if !ok {
		return
	}
	ownerID := r.URL.Query().Get("owner")
	if ownerID == "" {
		ownerID = callerID
	}

	url, err := rt.queries.GetDownloadLink(r.Context(), ownerID, r.PathValue("courseId"), r.PathValue("fileId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (rt *Router) handleCourseByCode(w http.ResponseWriter, r *http.Request) {
	manifest, err := rt.queries.GetCourseByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

type enrollRequest struct {
	Code string `json:"code"`
}

func (rt *Router) handleEnroll(w http.ResponseWriter, r *http.Request) {
	if rt.enroller == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "enrollment is not configured"})
		return
	}
	callerID, ok := rt.callerID(w, r)
	if !ok {
		return
	}

	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode request", err))
		return
	}

	manifest, err := rt.enroller.EnrollByCode(r.Context(), callerID, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

type questionsRequest struct {
	OwnerID string            `json:"ownerId"`
	Title   string            `json:"title"`
	Size    domain.CourseSize `json:"size"`
}

func (rt *Router) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if rt.questions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "question generation is not configured"})
		return
	}
	callerID, ok := rt.callerID(w, r)
	if !ok {
		return
	}

	var req questionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode request", err))
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = callerID
	}

	manifest, err := rt.questions.GenerateForCourse(r.Context(), req.OwnerID, callerID, r.PathValue("courseId"), req.Title, req.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

// callerID reads the authenticated user id set by the gateway. Requests
// without it are rejected before touching any use case.
func (rt *Router) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID := r.Header.Get(headerUserID)
	if callerID == "" {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "authenticate",
			fmt.Errorf("missing %s header", headerUserID)))
		return "", false
	}
	return callerID, true
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

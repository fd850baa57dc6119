package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
)

type fakeProcessor struct {
	gotCmd   ports.ProcessCommand
	manifest *domain.CourseManifest
	err      error
}

func (f *fakeProcessor) ProcessCourse(ctx context.Context, cmd ports.ProcessCommand) (*domain.CourseManifest, error) {
	f.gotCmd = cmd
	return f.manifest, f.err
}

type fakeQueries struct {
	manifest *domain.CourseManifest
	link     string
	err      error
}

func (f *fakeQueries) GetCourse(ctx context.Context, ownerID, courseID string) (*domain.CourseManifest, error) {
	return f.manifest, f.err
}

func (f *fakeQueries) ListCourses(ctx context.Context, ownerID string) ([]domain.CourseManifest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.CourseManifest{*f.manifest}, nil
}

func (f *fakeQueries) GetCourseByCode(ctx context.Context, code string) (*domain.CourseManifest, error) {
	return f.manifest, f.err
}

func (f *fakeQueries) GetDownloadLink(ctx context.Context, ownerID, courseID, fileID string) (string, error) {
	return f.link, f.err
}

type fakeEnroller struct {
	gotUser  string
	gotCode  string
	manifest *domain.CourseManifest
	err      error
}

func (f *fakeEnroller) EnrollByCode(ctx context.Context, userID, code string) (*domain.CourseManifest, error) {
	f.gotUser, f.gotCode = userID, code
	return f.manifest, f.err
}

func testManifest() *domain.CourseManifest {
	return &domain.CourseManifest{
		CourseID:      "c1",
		Title:         "Onboarding",
		OverallStatus: domain.CourseStatusReady,
		InviteCode:    "AB12CD",
	}
}

func newTestRouter(processor *fakeProcessor, queries *fakeQueries, enroller ports.CourseEnroller) http.Handler {
	return NewRouter("course-ingest", processor, queries, enroller, nil, nil).Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req.Header.Set(headerUserID, userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestProcessEndpoint(t *testing.T) {
	processor := &fakeProcessor{manifest: testManifest()}
	handler := newTestRouter(processor, &fakeQueries{}, nil)

	body := `{"title":"Onboarding","size":"small","files":[{"path":"a.pdf","originalName":"a.pdf","storagePath":"u1/c1/files/a.pdf","mime":"application/pdf","size":10}]}`
	rec := doRequest(t, handler, http.MethodPost, "/v1/courses/c1/process", "u1", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	cmd := processor.gotCmd
	if cmd.CourseID != "c1" || cmd.CallerID != "u1" {
		t.Errorf("cmd = %+v", cmd)
	}
	if cmd.OwnerID != "u1" {
		t.Errorf("owner defaulted to %q, want caller", cmd.OwnerID)
	}
	if len(cmd.Files) != 1 || cmd.Files[0].StoredName != "a.pdf" {
		t.Errorf("files = %+v", cmd.Files)
	}

	var manifest domain.CourseManifest
	if err := json.Unmarshal(rec.Body.Bytes(), &manifest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if manifest.CourseID != "c1" || manifest.InviteCode != "AB12CD" {
		t.Errorf("manifest = %+v", manifest)
	}
}

func TestProcessRequiresUserHeader(t *testing.T) {
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{}, nil)
	rec := doRequest(t, handler, http.MethodPost, "/v1/courses/c1/process", "", `{"title":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProcessRejectsMalformedBody(t *testing.T) {
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{}, nil)
	rec := doRequest(t, handler, http.MethodPost, "/v1/courses/c1/process", "u1", `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"forbidden", domain.WrapError(domain.ErrForbidden, "op", base), http.StatusForbidden, "not the course owner"},
		{"not found", domain.WrapError(domain.ErrCourseNotFound, "op", base), http.StatusNotFound, "course not found"},
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "op", base), http.StatusBadRequest, "invalid input"},
		{"temporary", domain.WrapError(domain.ErrTemporary, "op", base), http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"storage", domain.WrapError(domain.ErrStorage, "op", base), http.StatusInternalServerError, "internal error"},
		{"unknown", base, http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestRouter(&fakeProcessor{err: tt.err}, &fakeQueries{}, nil)
			rec := doRequest(t, handler, http.MethodPost, "/v1/courses/c1/process", "u1", `{"title":"x"}`)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if !strings.Contains(resp.Error, tt.wantBody) {
				t.Errorf("error = %q, want substring %q", resp.Error, tt.wantBody)
			}
		})
	}
}

func TestGetCourseEndpoint(t *testing.T) {
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{manifest: testManifest()}, nil)
	rec := doRequest(t, handler, http.MethodGet, "/v1/courses/c1?owner=u1", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListCoursesEndpoint(t *testing.T) {
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{manifest: testManifest()}, nil)
	rec := doRequest(t, handler, http.MethodGet, "/v1/courses", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Courses []domain.CourseManifest `json:"courses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Courses) != 1 {
		t.Errorf("courses = %d, want 1", len(resp.Courses))
	}
}

func TestDownloadLinkEndpoint(t *testing.T) {
	queries := &fakeQueries{link: "signed://u1/c1/files/a.pdf"}
	handler := newTestRouter(&fakeProcessor{}, queries, nil)
	rec := doRequest(t, handler, http.MethodGet, "/v1/courses/c1/files/a.pdf/link", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["url"] != queries.link {
		t.Errorf("url = %q", resp["url"])
	}
}

func TestCourseByCodeEndpointNeedsNoUserHeader(t *testing.T) {
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{manifest: testManifest()}, nil)
	rec := doRequest(t, handler, http.MethodGet, "/v1/courses/by-code/AB12CD", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEnrollEndpoint(t *testing.T) {
	enroller := &fakeEnroller{manifest: testManifest()}
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{}, enroller)

	rec := doRequest(t, handler, http.MethodPost, "/v1/enrollments", "employee-9", `{"code":"AB12CD"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if enroller.gotUser != "employee-9" || enroller.gotCode != "AB12CD" {
		t.Errorf("enroller got user=%q code=%q", enroller.gotUser, enroller.gotCode)
	}
}

func TestEnrollUnavailableWithoutBackend(t *testing.T) {
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{}, nil)
	rec := doRequest(t, handler, http.MethodPost, "/v1/enrollments", "employee-9", `{"code":"AB12CD"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestRouter(&fakeProcessor{}, &fakeQueries{}, nil)
	rec := doRequest(t, handler, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

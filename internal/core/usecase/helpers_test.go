package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
)

// memStore is an in-memory ports.ObjectStore with per-path fault injection.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	downloadErr func(path string) error
	uploadErr   func(path string) error
	listErr     error

	uploads   []string
	downloads []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
}

func (s *memStore) get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	return data, ok
}

func (s *memStore) Download(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	s.downloads = append(s.downloads, path)
	s.mu.Unlock()

	if s.downloadErr != nil {
		if err := s.downloadErr(path); err != nil {
			return nil, err
		}
	}
	data, ok := s.get(path)
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return data, nil
}

func (s *memStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	s.uploads = append(s.uploads, path)
	s.mu.Unlock()

	if s.uploadErr != nil {
		if err := s.uploadErr(path); err != nil {
			return err
		}
	}
	s.put(path, data)
	return nil
}

// List mirrors the localfs contract: immediate children under prefix, sorted.
func (s *memStore) List(ctx context.Context, prefix string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	for key := range s.objects {
		rest := key
		if prefix != "" {
			if !strings.HasPrefix(key, prefix+"/") {
				continue
			}
			rest = strings.TrimPrefix(key, prefix+"/")
		}
		if head, _, _ := strings.Cut(rest, "/"); head != "" {
			seen[head] = true
		}
	}
	children := make([]string, 0, len(seen))
	for child := range seen {
		children = append(children, child)
	}
	sort.Strings(children)
	return children, nil
}

func (s *memStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if _, ok := s.get(path); !ok {
		return "", fmt.Errorf("object %s not found", path)
	}
	return "signed://" + path, nil
}

func (s *memStore) EnsureBucket(ctx context.Context, name string, sizeLimit int64) error {
	return nil
}

func (s *memStore) opCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads) + len(s.downloads)
}

type fakeExtractor struct {
	err   error
	delay time.Duration
}

// Extract upper-cases the raw bytes so tests can tell extractor output from
// stored input.
func (f fakeExtractor) Extract(raw []byte) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	return strings.ToUpper(string(raw)), nil
}

type panickyExtractor struct {
	msg string
}

func (p panickyExtractor) Extract([]byte) (string, error) {
	panic(p.msg)
}

type fakeRegistry map[string]ports.Extractor

func (r fakeRegistry) ForExtension(ext string) (ports.Extractor, bool) {
	ex, ok := r[ext]
	return ex, ok
}

type fakeEnrollments struct {
	mu       sync.Mutex
	enrolled []*domain.Enrollment
	count    int
	countErr error
	enrolErr error
}

func (f *fakeEnrollments) Enroll(ctx context.Context, e *domain.Enrollment) error {
	if f.enrolErr != nil {
		return f.enrolErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrolled = append(f.enrolled, e)
	return nil
}

func (f *fakeEnrollments) CountByCourse(ctx context.Context, courseID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.CourseProcessedEvent
	err    error
}

func (f *fakePublisher) PublishCourseProcessed(ctx context.Context, event domain.CourseProcessedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fakeGenerator struct {
	questions []domain.Question
	err       error
	gotText   string
	gotSize   domain.CourseSize
}

func (f *fakeGenerator) Generate(ctx context.Context, title string, size domain.CourseSize, text string) ([]domain.Question, error) {
	f.gotText = text
	f.gotSize = size
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

func seedFile(store *memStore, ownerID, courseID, storedName, content string) domain.FileDescriptor {
	path := domain.RawFilePath(ownerID, courseID, storedName)
	store.put(path, []byte(content))
	return domain.FileDescriptor{
		StoredName:   storedName,
		OriginalName: storedName,
		StoragePath:  path,
		MimeType:     "application/octet-stream",
		DeclaredSize: int64(len(content)),
	}
}

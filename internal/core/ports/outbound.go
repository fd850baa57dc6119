package ports

import (
	"context"
	"time"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
)

// ObjectStore is the blob storage collaborator holding raw uploads, parsed
// text, and manifests.
type ObjectStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	EnsureBucket(ctx context.Context, name string, sizeLimit int64) error
}

// Extractor converts one format's raw bytes to plain text.
type Extractor interface {
	Extract(raw []byte) (string, error)
}

// ExtractorRegistry resolves an extractor for a file extension. A false
// second return means the format is intentionally unsupported.
type ExtractorRegistry interface {
	ForExtension(ext string) (Extractor, bool)
}

// EnrollmentStore persists employee course membership.
type EnrollmentStore interface {
	Enroll(ctx context.Context, e *domain.Enrollment) error
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

// EventPublisher announces completed processing runs to downstream consumers.
type EventPublisher interface {
	PublishCourseProcessed(ctx context.Context, event domain.CourseProcessedEvent) error
}

// QuestionGenerator produces training questions from extracted course text.
type QuestionGenerator interface {
	Generate(ctx context.Context, title string, size domain.CourseSize, text string) ([]domain.Question, error)
}

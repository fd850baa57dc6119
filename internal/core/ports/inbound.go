package ports

import (
	"context"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
)

// ProcessCommand carries one course-processing request.
type ProcessCommand struct {
	CourseID string
	OwnerID  string
	CallerID string
	Title    string
	Size     domain.CourseSize
	Files    []domain.FileDescriptor
}

// CourseProcessor is the inbound contract for batch ingestion.
type CourseProcessor interface {
	ProcessCourse(ctx context.Context, cmd ProcessCommand) (*domain.CourseManifest, error)
}

// CourseQueryService is the inbound read model over persisted manifests.
type CourseQueryService interface {
	GetCourse(ctx context.Context, ownerID, courseID string) (*domain.CourseManifest, error)
	ListCourses(ctx context.Context, ownerID string) ([]domain.CourseManifest, error)
	GetCourseByCode(ctx context.Context, code string) (*domain.CourseManifest, error)
	GetDownloadLink(ctx context.Context, ownerID, courseID, fileID string) (string, error)
}

// CourseEnroller joins an employee to a course via invite code.
type CourseEnroller interface {
	EnrollByCode(ctx context.Context, userID, code string) (*domain.CourseManifest, error)
}

// QuestionService generates training questions and attaches them to a course.
type QuestionService interface {
	GenerateForCourse(ctx context.Context, ownerID, callerID, courseID, title string, size domain.CourseSize) (*domain.CourseManifest, error)
}

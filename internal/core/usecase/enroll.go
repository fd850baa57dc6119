package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
)

// EnrollUseCase joins an employee to a course by invite code and keeps the
// per-course employee counts that manifests report.
type EnrollUseCase struct {
	query       *CourseQueryUseCase
	enrollments ports.EnrollmentStore
}

func NewEnrollUseCase(query *CourseQueryUseCase, enrollments ports.EnrollmentStore) *EnrollUseCase {
	return &EnrollUseCase{query: query, enrollments: enrollments}
}

// EnrollByCode is idempotent per (user, course). The returned manifest
// carries a fresh employee count rather than the snapshot taken at
// processing time.
func (uc *EnrollUseCase) EnrollByCode(ctx context.Context, userID, code string) (*domain.CourseManifest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "enroll", fmt.Errorf("user id is required"))
	}

	ownerID, manifest, err := uc.query.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  manifest.CourseID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.enrollments.Enroll(ctx, enrollment); err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "record enrollment", err)
	}

	if count, err := uc.enrollments.CountByCourse(ctx, manifest.CourseID); err == nil {
		manifest.EmployeeCount = count
	} else {
		slog.Warn("employee_count_failed", "course_id", manifest.CourseID, "error", err)
	}
	return manifest, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
)

// CourseQueryUseCase is the read side: it only ever deserializes manifests
// the coordinator wrote and signs download links for their files.
type CourseQueryUseCase struct {
	store   ports.ObjectStore
	signTTL time.Duration
}

func NewCourseQueryUseCase(store ports.ObjectStore, signTTL time.Duration) *CourseQueryUseCase {
	if signTTL <= 0 {
		signTTL = 10 * time.Minute
	}
	return &CourseQueryUseCase{store: store, signTTL: signTTL}
}

func (uc *CourseQueryUseCase) GetCourse(ctx context.Context, ownerID, courseID string) (*domain.CourseManifest, error) {
	raw, err := uc.store.Download(ctx, domain.ManifestPath(ownerID, courseID))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCourseNotFound, "load manifest", err)
	}
	var manifest domain.CourseManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, domain.WrapError(domain.ErrCourseNotFound, "decode manifest", err)
	}
	return &manifest, nil
}

// ListCourses never fails wholesale because of one bad course: an unreadable
// manifest becomes a placeholder record with an error status. Results are
// newest first; manifests without a timestamp sort last.
func (uc *CourseQueryUseCase) ListCourses(ctx context.Context, ownerID string) ([]domain.CourseManifest, error) {
	courseIDs, err := uc.store.List(ctx, ownerID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "list courses", err)
	}

	manifests := make([]domain.CourseManifest, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		manifest, err := uc.GetCourse(ctx, ownerID, courseID)
		if err != nil {
			slog.Warn("unreadable_manifest", "owner_id", ownerID, "course_id", courseID, "error", err)
			manifests = append(manifests, domain.CourseManifest{
				CourseID:      courseID,
				OverallStatus: domain.CourseStatusError,
				Files:         []domain.ParseOutcome{},
			})
			continue
		}
		manifests = append(manifests, *manifest)
	}

	sort.SliceStable(manifests, func(i, j int) bool {
		a, b := manifests[i].CreatedAt, manifests[j].CreatedAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
	return manifests, nil
}

func (uc *CourseQueryUseCase) GetCourseByCode(ctx context.Context, code string) (*domain.CourseManifest, error) {
	_, manifest, err := uc.findByCode(ctx, code)
	return manifest, err
}

func (uc *CourseQueryUseCase) GetDownloadLink(ctx context.Context, ownerID, courseID, fileID string) (string, error) {
	manifest, err := uc.GetCourse(ctx, ownerID, courseID)
	if err != nil {
		return "", err
	}
	for _, f := range manifest.Files {
		if f.FileID == fileID {
			url, err := uc.store.SignedURL(ctx, f.StoragePath, uc.signTTL)
			if err != nil {
				return "", domain.WrapError(domain.ErrStorage, "sign download link", err)
			}
			return url, nil
		}
	}
	return "", domain.WrapError(domain.ErrCourseNotFound, "resolve file",
		fmt.Errorf("file %s not in course %s", fileID, courseID))
}

// findByCode scans owner namespaces for a manifest carrying the invite code.
// Invite codes are uppercase on write; matching is case-insensitive anyway
// since employees type them by hand.
func (uc *CourseQueryUseCase) findByCode(ctx context.Context, code string) (string, *domain.CourseManifest, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil, domain.WrapError(domain.ErrInvalidInput, "find by code", fmt.Errorf("invite code is required"))
	}

	owners, err := uc.store.List(ctx, "")
	if err != nil {
		return "", nil, domain.WrapError(domain.ErrStorage, "list owners", err)
	}
	for _, ownerID := range owners {
		courseIDs, err := uc.store.List(ctx, ownerID)
		if err != nil {
			slog.Warn("list_courses_failed", "owner_id", ownerID, "error", err)
			continue
		}
		for _, courseID := range courseIDs {
			manifest, err := uc.GetCourse(ctx, ownerID, courseID)
			if err != nil {
				continue
			}
			if strings.EqualFold(manifest.InviteCode, code) {
				return ownerID, manifest, nil
			}
		}
	}
	return "", nil, domain.WrapError(domain.ErrCourseNotFound, "find by code",
		fmt.Errorf("no course with invite code %s", code))
}

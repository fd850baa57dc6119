package usecase

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
)

const inviteCodeLength = 6

// ProcessOptions bounds the per-course fan-out.
type ProcessOptions struct {
	Bucket          string
	BucketSizeLimit int64
	Workers         int
	FileTimeout     time.Duration
}

func (o ProcessOptions) normalize() ProcessOptions {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.FileTimeout <= 0 {
		o.FileTimeout = 2 * time.Minute
	}
	if o.Bucket == "" {
		o.Bucket = "adapt-files"
	}
	return o
}

// ProcessCourseUseCase owns one batch: it validates ownership, drives file
// processors over the descriptor list with bounded concurrency, reduces the
// outcomes, and persists the manifest and combined-text artifacts.
//
// Two overlapping runs for the same course are a last-writer-wins race on
// the manifest; callers are expected to serialize reprocessing per course.
type ProcessCourseUseCase struct {
	store       ports.ObjectStore
	processor   fileProcessor
	enrollments ports.EnrollmentStore
	events      ports.EventPublisher
	opts        ProcessOptions
}

func NewProcessCourseUseCase(
	store ports.ObjectStore,
	registry ports.ExtractorRegistry,
	enrollments ports.EnrollmentStore,
	events ports.EventPublisher,
	opts ProcessOptions,
) *ProcessCourseUseCase {
	return &ProcessCourseUseCase{
		store:       store,
		processor:   fileProcessor{store: store, registry: registry},
		enrollments: enrollments,
		events:      events,
		opts:        opts.normalize(),
	}
}

// ProcessCourse returns the persisted manifest. Per-file failures surface
// only through outcome statuses; the call itself fails only on bad input,
// ownership mismatch, or a manifest write failure. A fresh invite code is
// generated on every run, so reprocessing invalidates previously shared
// codes.
func (uc *ProcessCourseUseCase) ProcessCourse(ctx context.Context, cmd ports.ProcessCommand) (*domain.CourseManifest, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if cmd.CallerID != cmd.OwnerID {
		return nil, domain.WrapError(domain.ErrForbidden, "process course",
			fmt.Errorf("caller %s does not own course %s", cmd.CallerID, cmd.CourseID))
	}

	// Capacity may already exist; provisioning failure is not fatal.
	if err := uc.store.EnsureBucket(ctx, uc.opts.Bucket, uc.opts.BucketSizeLimit); err != nil {
		slog.Warn("ensure_bucket_failed", "bucket", uc.opts.Bucket, "error", err)
	}

	results := uc.processFiles(ctx, cmd)

	outcomes := make([]domain.ParseOutcome, len(results))
	var textBytes int64
	for i, r := range results {
		outcomes[i] = r.outcome
		if r.outcome.Status == domain.ParseStatusParsed {
			textBytes += int64(len(r.text))
		}
	}

	manifest := &domain.CourseManifest{
		CourseID:      cmd.CourseID,
		Title:         cmd.Title,
		Size:          cmd.Size,
		CreatedAt:     time.Now().UTC(),
		OverallStatus: domain.OverallStatus(outcomes),
		TextBytes:     textBytes,
		InviteCode:    newInviteCode(),
		EmployeeCount: uc.employeeCount(ctx, cmd.CourseID),
		Files:         outcomes,
	}

	if err := writeManifest(ctx, uc.store, cmd.OwnerID, manifest); err != nil {
		return nil, err
	}
	uc.writeCombinedText(ctx, cmd, results)
	uc.publishProcessed(ctx, cmd.OwnerID, manifest)

	slog.Info("course_processed",
		"course_id", cmd.CourseID,
		"owner_id", cmd.OwnerID,
		"status", manifest.OverallStatus,
		"files", len(manifest.Files),
		"text_bytes", manifest.TextBytes,
	)
	return manifest, nil
}

// processFiles fans the batch out over a bounded worker pool. Results are
// written into index-addressed slots so manifest order always equals input
// order, whatever the completion order was.
func (uc *ProcessCourseUseCase) processFiles(ctx context.Context, cmd ports.ProcessCommand) []fileResult {
	results := make([]fileResult, len(cmd.Files))
	sem := make(chan struct{}, uc.opts.Workers)
	var wg sync.WaitGroup

	for i, fd := range cmd.Files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, fd domain.FileDescriptor) {
			defer wg.Done()
			defer func() { <-sem }()

			fileCtx, cancel := context.WithTimeout(ctx, uc.opts.FileTimeout)
			defer cancel()
			results[i] = uc.processor.process(fileCtx, cmd.OwnerID, cmd.CourseID, fd)
		}(i, fd)
	}
	wg.Wait()
	return results
}

func (uc *ProcessCourseUseCase) employeeCount(ctx context.Context, courseID string) int {
	if uc.enrollments == nil {
		return 0
	}
	count, err := uc.enrollments.CountByCourse(ctx, courseID)
	if err != nil {
		slog.Warn("employee_count_failed", "course_id", courseID, "error", err)
		return 0
	}
	return count
}

// writeCombinedText persists the concatenation of every parsed file's text,
// each section prefixed with its source name. Nothing is written when no
// file parsed at all; a write failure is logged and swallowed since the
// manifest, not this artifact, is the contract with readers.
func (uc *ProcessCourseUseCase) writeCombinedText(ctx context.Context, cmd ports.ProcessCommand, results []fileResult) {
	var sections []string
	for _, r := range results {
		if r.outcome.Status != domain.ParseStatusParsed {
			continue
		}
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s", r.outcome.OriginalName, r.text))
	}
	if len(sections) == 0 {
		return
	}

	path := domain.CombinedTextPath(cmd.OwnerID, cmd.CourseID)
	combined := strings.Join(sections, "\n\n")
	if err := uc.store.Upload(ctx, path, []byte(combined), "text/plain; charset=utf-8"); err != nil {
		slog.Warn("combined_text_save_failed", "course_id", cmd.CourseID, "error", err)
	}
}

func (uc *ProcessCourseUseCase) publishProcessed(ctx context.Context, ownerID string, m *domain.CourseManifest) {
	if uc.events == nil {
		return
	}
	event := domain.CourseProcessedEvent{
		CourseID:      m.CourseID,
		OwnerID:       ownerID,
		OverallStatus: m.OverallStatus,
		FileCount:     len(m.Files),
		TextBytes:     m.TextBytes,
		ProcessedAt:   m.CreatedAt,
	}
	if err := uc.events.PublishCourseProcessed(ctx, event); err != nil {
		slog.Warn("course_processed_event_failed", "course_id", m.CourseID, "error", err)
	}
}

// writeManifest serializes and uploads the manifest. Non-ASCII stays
// unescaped so titles and filenames survive byte-for-byte.
func writeManifest(ctx context.Context, store ports.ObjectStore, ownerID string, m *domain.CourseManifest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return domain.WrapError(domain.ErrStorage, "encode manifest", err)
	}

	path := domain.ManifestPath(ownerID, m.CourseID)
	if err := store.Upload(ctx, path, buf.Bytes(), "application/json"); err != nil {
		return domain.WrapError(domain.ErrStorage, "save manifest", err)
	}
	return nil
}

func validateCommand(cmd ports.ProcessCommand) error {
	switch {
	case strings.TrimSpace(cmd.CourseID) == "":
		return domain.WrapError(domain.ErrInvalidInput, "process course", fmt.Errorf("course id is required"))
	case strings.TrimSpace(cmd.OwnerID) == "":
		return domain.WrapError(domain.ErrInvalidInput, "process course", fmt.Errorf("owner id is required"))
	case strings.TrimSpace(cmd.CallerID) == "":
		return domain.WrapError(domain.ErrInvalidInput, "process course", fmt.Errorf("caller id is required"))
	case strings.TrimSpace(cmd.Title) == "":
		return domain.WrapError(domain.ErrInvalidInput, "process course", fmt.Errorf("title is required"))
	}
	return nil
}

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newInviteCode() string {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf)
}

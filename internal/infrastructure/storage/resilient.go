// Package storage decorates an ObjectStore with retry and circuit breaking.
package storage

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/adaptlearn/course-ingest/internal/core/ports"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/resilience"
)

// Resilient routes every store call through the shared executor so a flaky
// backend gets retried and a dead one trips a breaker instead of stalling
// whole batches.
type Resilient struct {
	inner    ports.ObjectStore
	executor *resilience.Executor
}

func NewResilient(inner ports.ObjectStore, executor *resilience.Executor) *Resilient {
	return &Resilient{inner: inner, executor: executor}
}

func (r *Resilient) Download(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := r.executor.Execute(ctx, "store.download", func(ctx context.Context) error {
		var err error
		data, err = r.inner.Download(ctx, path)
		return err
	}, classifyStoreError)
	return data, err
}

func (r *Resilient) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	return r.executor.Execute(ctx, "store.upload", func(ctx context.Context) error {
		return r.inner.Upload(ctx, path, data, contentType)
	}, classifyStoreError)
}

func (r *Resilient) List(ctx context.Context, prefix string) ([]string, error) {
	var entries []string
	err := r.executor.Execute(ctx, "store.list", func(ctx context.Context) error {
		var err error
		entries, err = r.inner.List(ctx, prefix)
		return err
	}, classifyStoreError)
	return entries, err
}

func (r *Resilient) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	var url string
	err := r.executor.Execute(ctx, "store.sign", func(ctx context.Context) error {
		var err error
		url, err = r.inner.SignedURL(ctx, path, ttl)
		return err
	}, classifyStoreError)
	return url, err
}

func (r *Resilient) EnsureBucket(ctx context.Context, name string, sizeLimit int64) error {
	return r.executor.Execute(ctx, "store.ensure_bucket", func(ctx context.Context) error {
		return r.inner.EnsureBucket(ctx, name, sizeLimit)
	}, classifyStoreError)
}

func classifyStoreError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case errors.Is(err, fs.ErrNotExist):
		// A missing object is an answer, not an outage.
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
}

package localfs

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Upload(ctx, "u1/c1/manifest.json", []byte(`{"courseId":"c1"}`), "application/json"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	data, err := s.Download(ctx, "u1/c1/manifest.json")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != `{"courseId":"c1"}` {
		t.Errorf("data = %q", data)
	}

	// Upload overwrites in place.
	if err := s.Upload(ctx, "u1/c1/manifest.json", []byte("v2"), "application/json"); err != nil {
		t.Fatalf("Upload overwrite: %v", err)
	}
	data, _ = s.Download(ctx, "u1/c1/manifest.json")
	if string(data) != "v2" {
		t.Errorf("data after overwrite = %q", data)
	}
}

func TestDownloadMissingObject(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.Download(context.Background(), "nope/missing.txt"); err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestListChildren(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	for _, path := range []string{"u1/c2/manifest.json", "u1/c1/manifest.json", "u2/c3/manifest.json"} {
		if err := s.Upload(ctx, path, []byte("{}"), "application/json"); err != nil {
			t.Fatalf("Upload %s: %v", path, err)
		}
	}

	owners, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List root: %v", err)
	}
	if got, want := strings.Join(owners, ","), "u1,u2"; got != want {
		t.Errorf("owners = %s, want %s", got, want)
	}

	courses, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List u1: %v", err)
	}
	if got, want := strings.Join(courses, ","), "c1,c2"; got != want {
		t.Errorf("courses = %s, want %s", got, want)
	}

	missing, err := s.List(ctx, "ghost")
	if err != nil {
		t.Fatalf("List missing prefix: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("missing prefix listing = %v, want empty", missing)
	}
}

func TestSignedURL(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	if err := s.Upload(ctx, "u1/c1/files/a.pdf", []byte("%PDF"), "application/pdf"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	url, err := s.SignedURL(ctx, "u1/c1/files/a.pdf", time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.HasPrefix(url, "file://") || !strings.Contains(url, "expires=") {
		t.Errorf("url = %q", url)
	}

	if _, err := s.SignedURL(ctx, "u1/c1/files/missing.pdf", time.Minute); err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestEnsureBucket(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	if err := s.EnsureBucket(ctx, "adapt-files", 0); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}
	if err := s.EnsureBucket(ctx, "adapt-files", 0); err != nil {
		t.Fatalf("EnsureBucket repeat: %v", err)
	}
	if err := s.EnsureBucket(ctx, "", 0); err == nil {
		t.Fatal("expected error for empty bucket name")
	}
}

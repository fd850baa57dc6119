package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
)

// fileResult pairs a file's outcome with the text it yielded, so the
// coordinator can build the combined artifact without re-reading storage.
type fileResult struct {
	outcome domain.ParseOutcome
	text    string
}

// fileProcessor turns one FileDescriptor into exactly one ParseOutcome.
// Every failure mode is captured as data; it never returns an error.
type fileProcessor struct {
	store    ports.ObjectStore
	registry ports.ExtractorRegistry
}

func (p *fileProcessor) process(ctx context.Context, ownerID, courseID string, fd domain.FileDescriptor) fileResult {
	outcome := domain.ParseOutcome{
		FileID:       fd.StoredName,
		OriginalName: fd.OriginalName,
		MimeType:     fd.MimeType,
		DeclaredSize: fd.DeclaredSize,
		StoragePath:  fd.StoragePath,
	}

	raw, err := p.store.Download(ctx, fd.StoragePath)
	if err != nil {
		outcome.Status = domain.ParseStatusError
		outcome.ErrorDetail = fmt.Sprintf("download failed: %v", err)
		return fileResult{outcome: outcome}
	}

	ext := fileExtension(fd.OriginalName)
	ex, ok := p.registry.ForExtension(ext)
	if !ok {
		outcome.Status = domain.ParseStatusSkipped
		outcome.ErrorDetail = skipReason(ext)
		return fileResult{outcome: outcome}
	}

	text, err := extractText(ex, raw)
	if err != nil {
		outcome.Status = domain.ParseStatusError
		outcome.ErrorDetail = fmt.Sprintf("parse failed: %v", err)
		return fileResult{outcome: outcome}
	}

	parsedPath := domain.ParsedTextPath(ownerID, courseID, fd.StoredName)
	if err := p.store.Upload(ctx, parsedPath, []byte(text), "text/plain; charset=utf-8"); err != nil {
		// Text that cannot be durably stored is not parsed.
		outcome.Status = domain.ParseStatusError
		outcome.ErrorDetail = fmt.Sprintf("save parsed text failed: %v", err)
		return fileResult{outcome: outcome}
	}

	outcome.Status = domain.ParseStatusParsed
	outcome.ParsedPath = parsedPath
	slog.Debug("file_parsed", "course_id", courseID, "file", fd.OriginalName, "bytes", len(text))
	return fileResult{outcome: outcome, text: text}
}

// extractText shields the pipeline from extractor panics. Parser libraries
// can panic on crafted inputs; a hostile upload must become an error outcome
// for that one file, not kill the worker goroutine and the process with it.
func extractText(ex ports.Extractor, raw []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return ex.Extract(raw)
}

// fileExtension returns the lowercased text after the last dot, without the
// dot; a name with no dot yields "".
func fileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func skipReason(ext string) string {
	switch ext {
	case "":
		return "file has no extension; text extraction not attempted"
	case "doc":
		return "legacy .doc format is not supported; upload .docx to extract text"
	default:
		return fmt.Sprintf("file type .%s is not supported for text extraction", ext)
	}
}

// Package extractor maps file extensions to plain-text extractors.
package extractor

import "github.com/adaptlearn/course-ingest/internal/core/ports"

// Registry dispatches on a lowercased extension without the leading dot.
// Extensions with no entry are a policy skip, not a failure: legacy .doc in
// particular stays unsupported on purpose so callers can tell "we chose not
// to parse this" apart from a real parse error.
type Registry struct {
	byExt map[string]ports.Extractor
}

// NewRegistry returns a registry covering every supported upload format.
func NewRegistry() *Registry {
	return &Registry{
		byExt: map[string]ports.Extractor{
			"pdf":  PDF{},
			"docx": DOCX{},
			"txt":  Text{},
			"xlsx": XLSX{},
		},
	}
}

func (r *Registry) ForExtension(ext string) (ports.Extractor, bool) {
	e, ok := r.byExt[ext]
	return e, ok
}

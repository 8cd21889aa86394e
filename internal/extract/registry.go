package extract

import (
	"fmt"
	"strings"
)

// Format describes one file format and how to build its extractor.
type Format struct {
	Name       string
	Types      []string
	Extensions []string
	New        Factory
}

type Registry struct {
	byMIME      map[string]Format
	byExtension map[string]Format
}

func NewRegistry() *Registry {
	return &Registry{
		byMIME:      make(map[string]Format),
		byExtension: make(map[string]Format),
	}
}

func (r *Registry) Register(f Format) {
	for _, mt := range f.Types {
		key := strings.ToLower(strings.TrimSpace(mt))
		if key != "" {
			r.byMIME[key] = f
		}
	}
	for _, ext := range f.Extensions {
		key := normalizeExt(ext)
		if key != "" {
			r.byExtension[key] = f
		}
	}
}

func (r *Registry) Resolve(mimeType, extension string) (Format, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	ext := normalizeExt(extension)

	if f, ok := r.byExtension[ext]; ok {
		return f, nil
	}

	if f, ok := r.byMIME[mt]; ok {
		return f, nil
	}

	if i := strings.Index(mt, ";"); i > 0 {
		if f, ok := r.byMIME[strings.TrimSpace(mt[:i])]; ok {
			return f, nil
		}
	}

	// plain text that did not sniff as CSV is still tried as delimited text
	if strings.HasPrefix(mt, "text/") {
		if f, ok := r.byMIME["text/csv"]; ok {
			return f, nil
		}
	}

	return Format{}, fmt.Errorf("no extractor registered for mime=%q extension=%q", mimeType, extension)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

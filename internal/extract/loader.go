package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// SuccessHook is called after a file was extracted.
type SuccessHook func(fileType string, fileSize int64, duration time.Duration)

// Loader picks the extractor for a single file and runs it.
type Loader struct {
	registry     *Registry
	maxFileBytes int64
	onSuccess    SuccessHook
}

func NewLoader(registry *Registry, maxFileBytes int64) *Loader {
	return &Loader{registry: registry, maxFileBytes: maxFileBytes}
}

func (l *Loader) SetSuccessHook(h SuccessHook) { l.onSuccess = h }

// Resolve returns the format registered for path, sniffing the content type
// only when the extension is unknown.
func (l *Loader) Resolve(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, err := l.registry.Resolve("", ext); err == nil {
		return f, nil
	}
	return l.registry.Resolve(sniffMIMEType(path), ext)
}

func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("file path required")
	}

	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if l.maxFileBytes > 0 && st.Size() > l.maxFileBytes {
		return nil, fmt.Errorf("%s exceeds %dMB limit", path, l.maxFileBytes/(1<<20))
	}

	f, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := f.New(path).Extract(ctx)
	if err != nil {
		return nil, err
	}
	if l.onSuccess != nil {
		l.onSuccess(f.Name, st.Size(), time.Since(start))
	}
	return t, nil
}

// sniffMIMEType returns "" when the file cannot be read.
func sniffMIMEType(path string) string {
	m, err := mimetype.DetectFile(path)
	if err != nil || m == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(m.String()))
}

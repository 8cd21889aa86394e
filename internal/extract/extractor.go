package extract

import "context"

// Extractor turns the file bound at construction into a normalized trace table.
// Implementations hold no state beyond the path and may be used from
// independent goroutines.
type Extractor interface {
	Extract(ctx context.Context) (*Table, error)
	Path() string
	Name() string
}

// Factory builds an Extractor bound to path.
type Factory func(path string) Extractor

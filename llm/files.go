package llm

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/randalmurphal/issueflow/prompt"
)

// Limits bounds the file context sent with a diff request.
type Limits struct {
	MaxFileSize  int64 // per file, larger files are truncated
	MaxTotalSize int64
	MaxFileCount int
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:  100 * 1024,
		MaxTotalSize: 500 * 1024,
		MaxFileCount: 50,
	}
}

// FileContext formats file contents as <file path="..."> blocks.
type FileContext struct {
	limits Limits
	files  map[string][]byte
}

// NewFileContext creates an empty file context with default limits.
func NewFileContext() *FileContext {
	return &FileContext{
		limits: DefaultLimits(),
		files:  make(map[string][]byte),
	}
}

// WithLimits sets custom limits.
func (f *FileContext) WithLimits(l Limits) *FileContext {
	f.limits = l
	return f
}

// Add adds content under a path. Adding a path twice replaces it.
func (f *FileContext) Add(path string, content []byte) {
	f.files[path] = content
}

// Len returns the number of files.
func (f *FileContext) Len() int {
	return len(f.files)
}

// Build renders the files in path order.
func (f *FileContext) Build() (string, error) {
	if f.limits.MaxFileCount > 0 && len(f.files) > f.limits.MaxFileCount {
		return "", fmt.Errorf("%w: %d files > max %d",
			ErrContextTooLarge, len(f.files), f.limits.MaxFileCount)
	}

	b := prompt.NewBuilder()
	var total int64
	for _, p := range slices.Sorted(maps.Keys(f.files)) {
		content := f.files[p]
		if isBinary(content) {
			b.AddFile(p, fmt.Sprintf("[Binary file: %d bytes]", len(content)))
			continue
		}
		if limit := f.limits.MaxFileSize; limit > 0 && int64(len(content)) > limit {
			content = append(content[:limit:limit], "\n\n[... truncated ...]"...)
		}
		total += int64(len(content))
		if f.limits.MaxTotalSize > 0 && total > f.limits.MaxTotalSize {
			return "", fmt.Errorf("%w: total size %d > max %d",
				ErrContextTooLarge, total, f.limits.MaxTotalSize)
		}
		b.AddFile(p, string(content))
	}
	return b.Build(), nil
}

// isBinary detects binary content by checking for null bytes.
func isBinary(data []byte) bool {
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	return bytes.Contains(sample, []byte{0})
}

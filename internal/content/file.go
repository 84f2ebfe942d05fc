package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FileSink struct {
	root string
}

func NewFileSink(root string) *FileSink {
	return &FileSink{root: root}
}

func (f *FileSink) Root() string {
	return f.root
}

func (f *FileSink) Write(_ context.Context, doc *Document) error {
	fileName := filepath.Join(f.root, filepath.FromSlash(doc.Path))
	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fileName, doc.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	return nil
}

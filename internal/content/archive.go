package content

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path"
	"sync"
	"time"
)

// ArchiveSink collects documents into a tar.gz file that can be deployed as
// a whole. Close must be called to finish the archive.
type ArchiveSink struct {
	mu         sync.Mutex
	file       *os.File
	hash       hash.Hash
	gzipWriter *gzip.Writer
	tarWriter  *tar.Writer
	prefix     string
	modTime    time.Time
}

func NewArchiveSink(fileName, prefix string) (*ArchiveSink, error) {
	tgzFile, err := os.Create(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	tgzHash := sha256.New()
	gzipWriter := gzip.NewWriter(io.MultiWriter(tgzFile, tgzHash))
	return &ArchiveSink{
		file:       tgzFile,
		hash:       tgzHash,
		gzipWriter: gzipWriter,
		tarWriter:  tar.NewWriter(gzipWriter),
		prefix:     prefix,
		modTime:    time.Now(),
	}, nil
}

func (a *ArchiveSink) Write(_ context.Context, doc *Document) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.tarWriter.WriteHeader(&tar.Header{
		Name:    path.Join(a.prefix, doc.Path),
		Mode:    0o644,
		Size:    int64(len(doc.Body)),
		ModTime: a.modTime,
	})
	if err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}
	if _, err := a.tarWriter.Write(doc.Body); err != nil {
		return fmt.Errorf("failed to write tar file: %w", err)
	}
	return nil
}

// Close finishes the archive and returns the file name and its sha256
// checksum.
func (a *ArchiveSink) Close() (string, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.file.Close()
	if err := a.tarWriter.Close(); err != nil {
		return "", "", fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := a.gzipWriter.Close(); err != nil {
		return "", "", fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return a.file.Name(), hex.EncodeToString(a.hash.Sum(nil)), nil
}

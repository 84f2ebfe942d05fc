package content

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Document is a generated page. Path is relative to the content root and
// always uses forward slashes.
type Document struct {
	Path string
	Body []byte
}

func NewDocument(body []byte, elem ...string) (*Document, error) {
	p := path.Join(elem...)
	if p == "." || p == "" || path.IsAbs(p) || strings.HasPrefix(p, "../") || p == ".." {
		return nil, fmt.Errorf("invalid document path %q", p)
	}
	return &Document{Path: p, Body: body}, nil
}

// Sink persists generated documents. Writing the same path again replaces
// the previous document.
type Sink interface {
	Write(ctx context.Context, doc *Document) error
}

// MultiSink writes every document to all sinks in order and stops at the
// first error.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, doc *Document) error {
	for _, s := range m {
		if err := s.Write(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

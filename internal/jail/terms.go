// ABOUTME: Terms-of-service document loading and rendering
// ABOUTME: Markdown is rendered to HTML once with goldmark and served on every GetTOS

package jail

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"

	"github.com/2389/warden/internal/assets"
)

// Terms is a versioned terms-of-service document.
type Terms struct {
	Version int
	HTML    string
}

// RenderTerms converts a markdown document into Terms.
func RenderTerms(version int, markdown []byte) (*Terms, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("rendering terms: %w", err)
	}
	return &Terms{Version: version, HTML: buf.String()}, nil
}

// LoadTerms reads and renders the markdown document at path. An empty path
// yields the document embedded in assets.
func LoadTerms(version int, path string) (*Terms, error) {
	if path == "" {
		return RenderTerms(version, assets.DefaultTerms)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terms file: %w", err)
	}
	return RenderTerms(version, data)
}

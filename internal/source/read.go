// Package source obtains the text of a rules document from a file, a
// stream or a URL and normalises it to UTF-8 without a byte-order mark.
package source

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Document is raw rules text plus the name it should be filed under
type Document struct {
	Name string
	Text string
}

// ReadAll reads r to the end. A leading UTF-8 or UTF-16 byte-order mark
// is honoured and removed; published rules files carry one.
func ReadAll(r io.Reader) (string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

// ReadFile reads the document at path, or standard input when path is "-"
func ReadFile(path string) (*Document, error) {
	if path == "-" {
		text, err := ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return &Document{Name: "stdin", Text: text}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	text, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{Name: filepath.Base(path), Text: text}, nil
}

// IsURL reports whether location should be fetched over HTTP
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// NameFromURL returns the last path segment of a URL, or its host
func NameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last, err := url.PathUnescape(segments[len(segments)-1])
	if err != nil {
		return segments[len(segments)-1]
	}
	return last
}

// Package course reads the content root to build chapter listings of videos
// and documents.
package course

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Video and document extensions served by the player. Anything else in a
// chapter folder is silently omitted.
var (
	videoExtensions    = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}
	documentExtensions = []string{".pdf", ".docx", ".doc", ".txt"}
)

// Common scanner errors
var (
	ErrChapterNotFound  = errors.New("chapter not found")
	ErrInvalidDirectory = errors.New("invalid directory path")
)

// Content is the partitioned listing of a single chapter folder.
// Both slices are ordered lexicographically by filename.
type Content struct {
	Videos []string `json:"videos"`
	PDFs   []string `json:"pdfs"`
}

// Scanner lists chapter folders under a content root. Listings are never
// cached; every call re-reads the filesystem so results always reflect the
// current directory contents.
type Scanner struct {
	root string
}

// NewScanner creates a scanner over the given content root.
func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// Root returns the content root the scanner reads from.
func (s *Scanner) Root() string {
	return s.root
}

// Chapters returns every chapter folder under the root mapped to its
// partitioned content, ordered lexicographically by folder name (map
// iteration aside, callers sort keys for display).
func (s *Scanner) Chapters() (map[string]Content, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDirectory, err)
	}

	chapters := make(map[string]Content)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		content, err := s.Chapter(entry.Name())
		if err != nil {
			// Folder vanished between the two reads; treat as absent.
			continue
		}
		chapters[entry.Name()] = content
	}
	return chapters, nil
}

// Chapter returns the partitioned listing of a single chapter folder, or
// ErrChapterNotFound when the folder does not exist or is not a directory.
func (s *Scanner) Chapter(name string) (Content, error) {
	path := filepath.Join(s.root, filepath.Clean("/"+name))

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Content{}, ErrChapterNotFound
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Content{}, ErrChapterNotFound
	}

	// os.ReadDir returns entries sorted by filename.
	content := Content{Videos: []string{}, PDFs: []string{}}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch {
		case IsVideo(entry.Name()):
			content.Videos = append(content.Videos, entry.Name())
		case IsDocument(entry.Name()):
			content.PDFs = append(content.PDFs, entry.Name())
		}
	}
	return content, nil
}

// VideoCounts returns the on-disk video count per chapter. This is the
// source of truth for "how many videos exist", including never-watched ones.
func (s *Scanner) VideoCounts() (map[string]int, error) {
	chapters, err := s.Chapters()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(chapters))
	for name, content := range chapters {
		counts[name] = len(content.Videos)
	}
	return counts, nil
}

// IsVideo reports whether the filename has a supported video extension.
func IsVideo(name string) bool {
	return hasExtension(name, videoExtensions)
}

// IsDocument reports whether the filename has a supported document extension.
func IsDocument(name string) bool {
	return hasExtension(name, documentExtensions)
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

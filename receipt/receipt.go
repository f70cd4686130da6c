// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Artifact kinds.
const (
	KindBallot = "ballot_receipt"
)

// Renderer produces a human-readable artifact from template data.
// Rendering runs post-commit and is allowed to fail; callers degrade to
// "receipt unavailable".
type Renderer interface {
	Render(kind string, data map[string]string) ([]byte, error)
}

// FileStore hosts rendered artifacts and hands back opaque URLs. The
// core never keeps raw bytes, only the returned URL.
type FileStore interface {
	Store(b []byte, pathHint string) (string, error)
	Delete(pathHint string) error
}

// Service combines rendering and storage.
type Service struct {
	Renderer Renderer
	Store    FileStore
}

// Generate renders an artifact and stores it, returning the opaque URL.
func (s *Service) Generate(kind string, data map[string]string, pathHint string) (string, error) {
	b, err := s.Renderer.Render(kind, data)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", kind, err)
	}
	url, err := s.Store.Store(b, pathHint)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", kind, err)
	}
	return url, nil
}

// TextRenderer renders plain-text receipts. PDF layout belongs to the
// external rendering system; this stands in wherever that system is not
// deployed.
type TextRenderer struct{}

func (TextRenderer) Render(kind string, data map[string]string) ([]byte, error) {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.ReplaceAll(kind, "_", " ")) + "\n\n")

	if v, ok := data["election"]; ok {
		b.WriteString("Election: " + v + "\n")
	}
	if v, ok := data["voter"]; ok {
		b.WriteString("Voter: " + v + "\n")
	}
	if v, ok := data["cast_at"]; ok {
		b.WriteString("Cast at: " + v + "\n")
	}
	b.WriteString("\n")

	n := 1
	for {
		v, ok := data[fmt.Sprintf("selection_%d", n)]
		if !ok {
			break
		}
		b.WriteString(humanize.Ordinal(n) + " selection: " + v + "\n")
		n++
	}

	var abstained []string
	for k, v := range data {
		if strings.HasPrefix(k, "abstained_") && k != "abstained_slots" {
			abstained = append(abstained, v)
		}
	}
	sort.Strings(abstained)
	for _, pos := range abstained {
		b.WriteString("Abstained: " + pos + "\n")
	}
	if v, ok := data["abstained_slots"]; ok {
		b.WriteString("Abstained slots: " + v + "\n")
	}

	return []byte(b.String()), nil
}

// DiskStore writes artifacts under a base directory and returns
// file:// URLs.
type DiskStore struct {
	Dir string
}

func (d DiskStore) Store(b []byte, pathHint string) (string, error) {
	path := filepath.Join(d.Dir, filepath.FromSlash(pathHint)+".txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create receipt directory: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}
	return "file://" + path, nil
}

func (d DiskStore) Delete(pathHint string) error {
	path := filepath.Join(d.Dir, filepath.FromSlash(pathHint)+".txt")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}

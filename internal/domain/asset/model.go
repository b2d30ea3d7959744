package asset

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Kind distinguishes room captures from object captures
type Kind string

const (
	KindRoom   Kind = "room"
	KindObject Kind = "object"
)

// Valid reports whether k is a known capture kind.
func (k Kind) Valid() bool {
	return k == KindRoom || k == KindObject
}

// ParseKind parses a kind name case-insensitively. Plural forms are accepted.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Source is where a descriptor's capture file lives. It is implemented only by
// FileSystemSource and BundleSampleSource.
type Source interface {
	sourceKind() string
	path() string
}

// FileSystemSource is a capture file found in a scanned directory.
type FileSystemSource struct {
	Path string `json:"path"`
}

func (s FileSystemSource) sourceKind() string { return "filesystem" }
func (s FileSystemSource) path() string       { return s.Path }

// BundleSampleSource is a read-only capture shipped with the application.
type BundleSampleSource struct {
	Path string `json:"path"`
}

func (s BundleSampleSource) sourceKind() string { return "bundle" }
func (s BundleSampleSource) path() string       { return s.Path }

// Descriptor describes one discoverable capture file. Descriptors are rebuilt
// on every scan and never persisted.
type Descriptor struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	Name          string    `json:"name"`
	FileName      string    `json:"file_name"`
	AssetFileName string    `json:"asset_file_name"`
	Extension     string    `json:"extension"`
	CapturedAt    time.Time `json:"captured_at"`
	SizeLabel     string    `json:"size_label"`
	SizeBytes     int64     `json:"size_bytes"`
	Source        Source    `json:"-"`

	// bundleFallback is the bundled resource sharing AssetFileName, if any.
	bundleFallback string
}

// ResolvedPath returns the file-system path when it exists on disk, else the
// bundled resource of the same asset name.
func (d Descriptor) ResolvedPath() (string, bool) {
	switch src := d.Source.(type) {
	case FileSystemSource:
		if fileExists(src.Path) {
			return src.Path, true
		}
		if d.bundleFallback != "" && fileExists(d.bundleFallback) {
			return d.bundleFallback, true
		}
	case BundleSampleSource:
		if fileExists(src.Path) {
			return src.Path, true
		}
	}
	return "", false
}

// IsAvailable reports whether the capture file can currently be resolved.
func (d Descriptor) IsAvailable() bool {
	_, ok := d.ResolvedPath()
	return ok
}

// Deletable reports whether the capture may be removed by the user.
func (d Descriptor) Deletable() bool {
	_, ok := d.Source.(FileSystemSource)
	return ok
}

// IsSample reports whether the descriptor comes from the bundled sample set.
func (d Descriptor) IsSample() bool {
	_, ok := d.Source.(BundleSampleSource)
	return ok
}

// ProvenanceLabel is the user-facing origin of the capture.
func (d Descriptor) ProvenanceLabel() string {
	if d.IsSample() {
		return "Sample"
	}
	return "Captured"
}

// SourcePath returns the raw path recorded in the descriptor's source.
func (d Descriptor) SourcePath() string {
	if d.Source == nil {
		return ""
	}
	return d.Source.path()
}

// SourceStats counts descriptors by origin.
type SourceStats struct {
	FileSystemRooms   int `json:"file_system_rooms"`
	BundleRooms       int `json:"bundle_rooms"`
	FileSystemObjects int `json:"file_system_objects"`
	BundleObjects     int `json:"bundle_objects"`
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

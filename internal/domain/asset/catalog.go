// Package asset discovers room and object capture files on disk and in the
// bundled sample set.
package asset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ganot/roomstage/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultExtension is the packaged 3D asset format produced by capture sessions.
const DefaultExtension = "usdz"

// unknownSize is reported when a file's attributes can't be read.
const unknownSize = "Unknown"

// CatalogConfig locates capture directories and the bundled samples.
type CatalogConfig struct {
	RoomsDir      string
	ObjectsDir    string
	BundleDir     string
	Extension     string
	RoomSamples   []SampleDefinition
	ObjectSamples []SampleDefinition
}

// Catalog scans capture directories. It holds no state between scans.
type Catalog struct {
	cfg    CatalogConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewCatalog creates a new catalog scanner.
func NewCatalog(cfg CatalogConfig, logger *slog.Logger) *Catalog {
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	cfg.Extension = strings.TrimPrefix(strings.ToLower(cfg.Extension), ".")
	if cfg.RoomSamples == nil {
		cfg.RoomSamples = DefaultRoomSamples
	}
	if cfg.ObjectSamples == nil {
		cfg.ObjectSamples = DefaultObjectSamples
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{cfg: cfg, logger: logger, now: time.Now}
}

// Extension returns the capture file extension, without the dot.
func (c *Catalog) Extension() string {
	return c.cfg.Extension
}

// Dir returns the scanned directory for a kind.
func (c *Catalog) Dir(kind Kind) string {
	if kind == KindObject {
		return c.cfg.ObjectsDir
	}
	return c.cfg.RoomsDir
}

// EnsureDirectories creates the capture directories if missing.
func (c *Catalog) EnsureDirectories() error {
	for _, dir := range []string{c.cfg.RoomsDir, c.cfg.ObjectsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create capture directory %s: %w", repository.ErrIO, dir, err)
		}
	}
	return nil
}

// Scan returns file-system captures merged with bundled samples, newest first.
// Bundled samples whose asset name collides with a file-system capture are
// dropped. Scan never fails; unreadable entries degrade to defaults.
func (c *Catalog) Scan(ctx context.Context, kind Kind) []Descriptor {
	found := c.scanDirectory(ctx, kind)

	taken := make(map[string]struct{}, len(found))
	for _, d := range found {
		taken[d.AssetFileName] = struct{}{}
	}

	all := found
	for _, d := range c.bundleSamples(ctx, kind) {
		if _, dup := taken[d.AssetFileName]; dup {
			continue
		}
		all = append(all, d)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CapturedAt.After(all[j].CapturedAt)
	})
	return all
}

// Available returns scanned descriptors whose file currently resolves.
func (c *Catalog) Available(ctx context.Context, kind Kind) []Descriptor {
	scanned := c.Scan(ctx, kind)
	out := scanned[:0]
	for _, d := range scanned {
		if d.IsAvailable() {
			out = append(out, d)
		}
	}
	return out
}

// Lookup finds a descriptor by ID in a fresh scan.
func (c *Catalog) Lookup(ctx context.Context, kind Kind, id string) (Descriptor, bool) {
	for _, d := range c.Scan(ctx, kind) {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// DeleteCapture removes the backing file of a file-system capture.
func (c *Catalog) DeleteCapture(d Descriptor) error {
	src, ok := d.Source.(FileSystemSource)
	if !ok {
		return ErrReadOnlySample
	}
	if err := os.Remove(src.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", repository.ErrNotFound, src.Path)
		}
		return fmt.Errorf("%w: delete capture %s: %w", repository.ErrIO, src.Path, err)
	}
	c.logger.Info("deleted capture", "kind", d.Kind, "path", src.Path)
	return nil
}

// SourceStats counts available captures by origin.
func (c *Catalog) SourceStats(ctx context.Context) SourceStats {
	var stats SourceStats
	for _, d := range c.Available(ctx, KindRoom) {
		if d.IsSample() {
			stats.BundleRooms++
		} else {
			stats.FileSystemRooms++
		}
	}
	for _, d := range c.Available(ctx, KindObject) {
		if d.IsSample() {
			stats.BundleObjects++
		} else {
			stats.FileSystemObjects++
		}
	}
	return stats
}

func (c *Catalog) scanDirectory(ctx context.Context, kind Kind) []Descriptor {
	dir := c.Dir(kind)
	if dir == "" {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to scan capture directory", "dir", dir, "error", err)
		return nil
	}

	var out []Descriptor
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(strings.TrimPrefix(filepath.Ext(name), "."), c.cfg.Extension) {
			continue
		}
		out = append(out, c.fileDescriptor(ctx, kind, filepath.Join(dir, name), entry))
	}
	return out
}

func (c *Catalog) fileDescriptor(ctx context.Context, kind Kind, path string, entry os.DirEntry) Descriptor {
	base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

	capturedAt := c.now()
	sizeLabel := unknownSize
	var sizeBytes int64
	if info, err := entry.Info(); err != nil {
		c.logger.WarnContext(ctx, "failed to read capture attributes", "path", path, "error", err)
	} else {
		capturedAt = info.ModTime()
		sizeBytes = info.Size()
		sizeLabel = FormatSize(sizeBytes)
	}

	d := Descriptor{
		ID:            descriptorID(kind, FileSystemSource{}.sourceKind(), absPath(path)),
		Kind:          kind,
		Name:          DisplayName(base),
		FileName:      base,
		AssetFileName: base,
		Extension:     c.cfg.Extension,
		CapturedAt:    capturedAt,
		SizeLabel:     sizeLabel,
		SizeBytes:     sizeBytes,
		Source:        FileSystemSource{Path: path},
	}
	if c.cfg.BundleDir != "" {
		d.bundleFallback = c.bundlePath(base)
	}
	return d
}

func (c *Catalog) bundleSamples(ctx context.Context, kind Kind) []Descriptor {
	if c.cfg.BundleDir == "" {
		return nil
	}

	defs := c.cfg.RoomSamples
	if kind == KindObject {
		defs = c.cfg.ObjectSamples
	}

	var out []Descriptor
	for _, def := range defs {
		path := c.bundlePath(def.AssetFileName)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, Descriptor{
			ID:            descriptorID(kind, BundleSampleSource{}.sourceKind(), def.AssetFileName),
			Kind:          kind,
			Name:          def.Name,
			FileName:      def.FileName,
			AssetFileName: def.AssetFileName,
			Extension:     c.cfg.Extension,
			CapturedAt:    info.ModTime(),
			SizeLabel:     FormatSize(info.Size()),
			SizeBytes:     info.Size(),
			Source:        BundleSampleSource{Path: path},
		})
	}
	c.logger.DebugContext(ctx, "resolved bundle samples", "kind", kind, "count", len(out))
	return out
}

func (c *Catalog) bundlePath(assetFileName string) string {
	return filepath.Join(c.cfg.BundleDir, assetFileName+"."+c.cfg.Extension)
}

// descriptorID derives a stable identifier so that project room references
// survive rescans.
func descriptorID(kind Kind, sourceKind, key string) string {
	name := "roomstage:" + string(kind) + ":" + sourceKind + ":" + key
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// DisplayName turns a raw capture file name like "living_room-v2" into
// "Living Room V2".
func DisplayName(fileName string) string {
	spaced := strings.NewReplacer("_", " ", "-", " ").Replace(fileName)
	return cases.Title(language.English).String(spaced)
}

// FormatSize renders a byte count as whole kilobytes below one megabyte and
// tenths of a megabyte above.
func FormatSize(bytes int64) string {
	mb := float64(bytes) / (1024 * 1024)
	if mb < 1.0 {
		return fmt.Sprintf("%.0f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1f MB", mb)
}

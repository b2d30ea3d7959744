package asset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rooms   string
	objects string
	bundle  string
	catalog *asset.Catalog
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		rooms:   filepath.Join(root, "Rooms", "Models"),
		objects: filepath.Join(root, "Objects", "Models"),
		bundle:  filepath.Join(root, "Bundle"),
	}
	require.NoError(t, os.MkdirAll(f.bundle, 0o755))
	f.catalog = asset.NewCatalog(asset.CatalogConfig{
		RoomsDir:   f.rooms,
		ObjectsDir: f.objects,
		BundleDir:  f.bundle,
	}, nil)
	require.NoError(t, f.catalog.EnsureDirectories())
	return f
}

func writeFile(t *testing.T, path string, content string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestCatalog_ScanPrefersFileSystemOverBundle(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	writeFile(t, filepath.Join(f.rooms, "Room1.usdz"), "captured", now.Add(-time.Hour))
	writeFile(t, filepath.Join(f.bundle, "Room1.usdz"), "sample", now.Add(-48*time.Hour))
	writeFile(t, filepath.Join(f.bundle, "Room2.usdz"), "sample2", now.Add(-72*time.Hour))

	rooms := f.catalog.Scan(context.Background(), asset.KindRoom)
	require.Len(t, rooms, 2)

	require.Equal(t, "Room1", rooms[0].AssetFileName)
	require.False(t, rooms[0].IsSample())
	require.Equal(t, "Captured", rooms[0].ProvenanceLabel())
	require.True(t, rooms[0].Deletable())

	require.Equal(t, "Room2", rooms[1].AssetFileName)
	require.True(t, rooms[1].IsSample())
	require.Equal(t, "Room 2", rooms[1].Name)
	require.Equal(t, "room2_scan", rooms[1].FileName)
	require.False(t, rooms[1].Deletable())
}

func TestCatalog_ScanSortsNewestFirst(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	writeFile(t, filepath.Join(f.rooms, "old.usdz"), "a", now.Add(-10*time.Hour))
	writeFile(t, filepath.Join(f.rooms, "new.usdz"), "b", now.Add(-1*time.Hour))
	writeFile(t, filepath.Join(f.bundle, "Room1.usdz"), "c", now.Add(-5*time.Hour))

	rooms := f.catalog.Scan(context.Background(), asset.KindRoom)
	require.Len(t, rooms, 3)
	for i := 1; i < len(rooms); i++ {
		require.False(t, rooms[i].CapturedAt.After(rooms[i-1].CapturedAt), "descriptor %d out of order", i)
	}
	require.Equal(t, "new", rooms[0].AssetFileName)
	require.Equal(t, "Room1", rooms[1].AssetFileName)
	require.Equal(t, "old", rooms[2].AssetFileName)
}

func TestCatalog_ScanFiltersEntries(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	writeFile(t, filepath.Join(f.objects, "chair.USDZ"), "x", now)
	writeFile(t, filepath.Join(f.objects, "notes.txt"), "x", now)
	writeFile(t, filepath.Join(f.objects, ".hidden.usdz"), "x", now)
	require.NoError(t, os.MkdirAll(filepath.Join(f.objects, "nested.usdz"), 0o755))

	objects := f.catalog.Scan(context.Background(), asset.KindObject)
	require.Len(t, objects, 1)
	require.Equal(t, "chair", objects[0].AssetFileName)
	require.Equal(t, "Chair", objects[0].Name)
	require.Equal(t, "0 KB", objects[0].SizeLabel)
}

func TestCatalog_ScanMissingDirectoryFallsBackToSamples(t *testing.T) {
	root := t.TempDir()
	bundle := filepath.Join(root, "Bundle")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	writeFile(t, filepath.Join(bundle, "Kursi.usdz"), "sample", time.Now())

	catalog := asset.NewCatalog(asset.CatalogConfig{
		RoomsDir:   filepath.Join(root, "missing"),
		ObjectsDir: filepath.Join(root, "missing-too"),
		BundleDir:  bundle,
	}, nil)

	require.Empty(t, catalog.Scan(context.Background(), asset.KindRoom))
	objects := catalog.Scan(context.Background(), asset.KindObject)
	require.Len(t, objects, 1)
	require.Equal(t, "Kursi", objects[0].Name)
}

func TestCatalog_IDsAreStableAcrossScans(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.rooms, "kitchen.usdz"), "k", time.Now())
	writeFile(t, filepath.Join(f.bundle, "Room2.usdz"), "s", time.Now())

	first := f.catalog.Scan(context.Background(), asset.KindRoom)
	second := f.catalog.Scan(context.Background(), asset.KindRoom)
	require.Len(t, first, 2)
	require.Equal(t, first[0].ID, second[0].ID)
	require.Equal(t, first[1].ID, second[1].ID)
	require.NotEqual(t, first[0].ID, first[1].ID)

	found, ok := f.catalog.Lookup(context.Background(), asset.KindRoom, first[0].ID)
	require.True(t, ok)
	require.Equal(t, first[0].AssetFileName, found.AssetFileName)

	_, ok = f.catalog.Lookup(context.Background(), asset.KindObject, first[0].ID)
	require.False(t, ok)
}

func TestDescriptor_ResolvedPathFallsBackToBundle(t *testing.T) {
	f := newFixture(t)
	captured := filepath.Join(f.rooms, "Room1.usdz")
	sample := filepath.Join(f.bundle, "Room1.usdz")
	writeFile(t, captured, "captured", time.Now())
	writeFile(t, sample, "sample", time.Now().Add(-time.Hour))

	rooms := f.catalog.Scan(context.Background(), asset.KindRoom)
	require.Len(t, rooms, 1)
	path, ok := rooms[0].ResolvedPath()
	require.True(t, ok)
	require.Equal(t, captured, path)

	require.NoError(t, os.Remove(captured))
	path, ok = rooms[0].ResolvedPath()
	require.True(t, ok)
	require.Equal(t, sample, path)

	require.NoError(t, os.Remove(sample))
	require.False(t, rooms[0].IsAvailable())
}

func TestCatalog_DeleteCapture(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.objects, "table.usdz")
	writeFile(t, path, "t", time.Now())
	writeFile(t, filepath.Join(f.bundle, "Vanesh.usdz"), "v", time.Now())

	objects := f.catalog.Scan(context.Background(), asset.KindObject)
	require.Len(t, objects, 2)

	for _, d := range objects {
		if d.IsSample() {
			require.ErrorIs(t, f.catalog.DeleteCapture(d), asset.ErrReadOnlySample)
			continue
		}
		require.NoError(t, f.catalog.DeleteCapture(d))
	}

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	stats := f.catalog.SourceStats(context.Background())
	require.Equal(t, asset.SourceStats{BundleObjects: 1}, stats)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"living_room", "Living Room"},
		{"scan-2024-01", "Scan 2024 01"},
		{"room1_scan", "Room1 Scan"},
		{"KITCHEN", "Kitchen"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, asset.DisplayName(tt.in))
		})
	}
}

func TestFormatSize(t *testing.T) {
	require.Equal(t, "0 KB", asset.FormatSize(0))
	require.Equal(t, "512 KB", asset.FormatSize(512*1024))
	require.Equal(t, "1.0 MB", asset.FormatSize(1024*1024))
	require.Equal(t, "2.5 MB", asset.FormatSize(5*1024*1024/2))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]asset.Kind{
		"room":    asset.KindRoom,
		"Rooms":   asset.KindRoom,
		" object": asset.KindObject,
		"objects": asset.KindObject,
	} {
		got, err := asset.ParseKind(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	_, err := asset.ParseKind("furniture")
	require.ErrorIs(t, err, asset.ErrUnknownKind)
}

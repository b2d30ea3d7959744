package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	"github.com/ganot/roomstage/internal/filestore"
	"github.com/ganot/roomstage/internal/repository"
	"github.com/ganot/roomstage/internal/sqlite"
	"github.com/ganot/roomstage/internal/thumbnail"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	session  *sdkmcp.ClientSession
	roomsDir string
	bundle   string
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()

	catalog := asset.NewCatalog(asset.CatalogConfig{
		RoomsDir:   filepath.Join(root, "Rooms", "Models"),
		ObjectsDir: filepath.Join(root, "Objects", "Models"),
		BundleDir:  filepath.Join(root, "Bundle"),
	}, nil)
	require.NoError(t, catalog.EnsureDirectories())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Bundle"), 0o755))

	store := filestore.New(filepath.Join(root, "Projects"), catalog.Extension(), nil)
	require.NoError(t, store.EnsureRoot())

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	projects := project.NewService(store, catalog, nil,
		project.WithActivity(activitySvc),
		project.WithThumbnails(thumbnail.NewGenerator()),
	)

	server := NewServer(Config{Services: Services{
		Projects: projects,
		Captures: catalog,
		Activity: activitySvc,
	}})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return testServer{
		session:  session,
		roomsDir: filepath.Join(root, "Rooms", "Models"),
		bundle:   filepath.Join(root, "Bundle"),
	}
}

// call invokes a tool and decodes its structured output into out.
func (s testServer) call(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	res := s.callRaw(t, name, args)
	require.False(t, res.IsError, "tool %s failed: %s", name, resultText(res))
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

// callErr invokes a tool that is expected to fail and returns its message.
func (s testServer) callErr(t *testing.T, name string, args map[string]any) string {
	t.Helper()
	res := s.callRaw(t, name, args)
	require.True(t, res.IsError, "tool %s unexpectedly succeeded", name)
	return resultText(res)
}

func (s testServer) callRaw(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := s.session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return res
}

func resultText(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func (s testServer) roomID(t *testing.T, assetFileName string) string {
	t.Helper()
	var captures listCapturesOutput
	s.call(t, "list_captures", map[string]any{"kind": "room"}, &captures)
	for _, c := range captures.Captures {
		if c.AssetFileName == assetFileName {
			return c.ID
		}
	}
	t.Fatalf("room %s not listed", assetFileName)
	return ""
}

func TestServer_ListsToolsAndDocs(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tools, err := s.session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"list_projects", "reload_projects", "get_project", "create_project",
		"rename_project", "update_project_room", "delete_project", "select_project",
		"list_captures", "delete_capture", "get_project_stats", "get_recent_activity",
	}, names)

	doc, err := s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "roomstage://docs/index"})
	require.NoError(t, err)
	require.Len(t, doc.Contents, 1)
	require.Contains(t, doc.Contents[0].Text, "list_projects")
}

func TestServer_ProjectLifecycle(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.roomsDir, "den.usdz"), []byte("den scan"), 0o644))
	roomID := s.roomID(t, "den")

	var created projectOutput
	s.call(t, "create_project", map[string]any{"name": "Den", "room_id": roomID}, &created)
	require.Equal(t, "Den", created.Project.Name)
	require.Equal(t, string(project.StatusAssetReady), created.Project.Status)
	require.Equal(t, roomID, *created.Project.SelectedRoomID)
	id := created.Project.ID

	var list listProjectsOutput
	s.call(t, "list_projects", nil, &list)
	require.Equal(t, 1, list.Count)
	require.Equal(t, id, list.Projects[0].ID)

	var renamed projectOutput
	s.call(t, "rename_project", map[string]any{"id": id, "name": "Study"}, &renamed)
	require.Equal(t, "Study", renamed.Project.Name)
	require.Equal(t, created.Project.FolderPath, renamed.Project.FolderPath)

	var cleared projectOutput
	s.call(t, "update_project_room", map[string]any{"id": id}, &cleared)
	require.Nil(t, cleared.Project.SelectedRoomID)
	require.Equal(t, string(project.StatusNoRoom), cleared.Project.Status)

	var selected projectOutput
	s.call(t, "select_project", map[string]any{"id": id}, &selected)
	require.True(t, selected.Project.Selected)

	var detail getProjectOutput
	s.call(t, "get_project", nil, &detail)
	require.Equal(t, id, detail.Project.ID)
	require.Nil(t, detail.Room)
	require.Positive(t, detail.ThumbnailBytes)

	var recent recentActivityOutput
	s.call(t, "get_recent_activity", map[string]any{"project_id": id}, &recent)
	require.Equal(t, 3, recent.Count)
	types := map[string]bool{}
	for _, e := range recent.Entries {
		types[e.Type] = true
	}
	require.True(t, types[string(activity.TypeProjectCreated)])
	require.True(t, types[string(activity.TypeProjectUpdated)])
	require.True(t, types[string(activity.TypeRoomUpdated)])

	var deleted deleteProjectOutput
	s.call(t, "delete_project", map[string]any{"id": id}, &deleted)
	require.Equal(t, id, deleted.DeletedID)
	require.NoDirExists(t, created.Project.FolderPath)

	s.call(t, "list_projects", nil, &list)
	require.Zero(t, list.Count)
}

func TestServer_CapturesAndStats(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.roomsDir, "attic.usdz"), []byte("attic"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.bundle, "Room1.usdz"), []byte("sample"), 0o644))

	var captures listCapturesOutput
	s.call(t, "list_captures", map[string]any{"kind": "rooms"}, &captures)
	require.Equal(t, 2, captures.Count)

	var sample, captured CaptureView
	for _, c := range captures.Captures {
		if c.Provenance == "Sample" {
			sample = c
		} else {
			captured = c
		}
	}
	require.False(t, sample.Deletable)
	require.True(t, captured.Deletable)

	msg := s.callErr(t, "delete_capture", map[string]any{"kind": "room", "id": sample.ID})
	require.Contains(t, msg, "READ_ONLY_SAMPLE")

	var created projectOutput
	s.call(t, "create_project", map[string]any{"name": "Attic", "room_id": captured.ID}, &created)

	var removed deleteCaptureOutput
	s.call(t, "delete_capture", map[string]any{"kind": "room", "id": captured.ID}, &removed)
	require.Equal(t, "attic", removed.Deleted.AssetFileName)
	require.NoFileExists(t, filepath.Join(s.roomsDir, "attic.usdz"))

	var stats projectStatsOutput
	s.call(t, "get_project_stats", nil, &stats)
	require.Equal(t, 1, stats.Total)
	require.Zero(t, stats.WithRooms)
	require.Equal(t, 1, stats.WithoutRooms)
	require.Equal(t, 1, stats.BundleRooms)
	require.Zero(t, stats.FileSystemRooms)
	require.Positive(t, stats.StorageBytes)

	// The copied asset outlives its source capture.
	var detail getProjectOutput
	s.call(t, "get_project", map[string]any{"id": created.Project.ID}, &detail)
	require.Equal(t, string(project.StatusAssetReady), detail.Project.Status)

	var reloaded listProjectsOutput
	s.call(t, "reload_projects", nil, &reloaded)
	require.Equal(t, 1, reloaded.Count)
	require.Nil(t, reloaded.Projects[0].SelectedRoomID)

	deletedType := string(activity.TypeCaptureDeleted)
	var recent recentActivityOutput
	s.call(t, "get_recent_activity", map[string]any{"type": deletedType}, &recent)
	require.Equal(t, 1, recent.Count)
	require.Equal(t, captured.ID, *recent.Entries[0].RoomID)
}

func TestServer_ToolErrors(t *testing.T) {
	s := newTestServer(t)

	require.Contains(t, s.callErr(t, "get_project", map[string]any{"id": "missing"}), "PROJECT_NOT_FOUND")
	require.Contains(t, s.callErr(t, "get_project", nil), "PROJECT_NOT_FOUND")
	require.Contains(t, s.callErr(t, "create_project", map[string]any{"room_id": "nope"}), "CAPTURE_NOT_FOUND")
	require.Contains(t, s.callErr(t, "list_captures", map[string]any{"kind": "chairs"}), "INVALID_KIND")

	var created projectOutput
	s.call(t, "create_project", map[string]any{"name": "Loft"}, &created)
	require.Contains(t, s.callErr(t, "rename_project", map[string]any{"id": created.Project.ID, "name": " "}), "INVALID_INPUT")
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{project.ErrProjectNotFound, "PROJECT_NOT_FOUND"},
		{project.ErrInvalidInput, "INVALID_INPUT"},
		{asset.ErrReadOnlySample, "READ_ONLY_SAMPLE"},
		{asset.ErrUnknownKind, "INVALID_KIND"},
		{ErrCaptureNotFound, "CAPTURE_NOT_FOUND"},
		{repository.ErrSourceNotFound, "SOURCE_NOT_FOUND"},
		{repository.ErrSerialization, "SERIALIZATION_ERROR"},
		{repository.ErrIO, "IO_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			wrapped := errors.Join(errors.New("context"), tt.err)
			apiErr := MapError(wrapped)
			require.NotNil(t, apiErr)
			require.Equal(t, tt.code, apiErr.Code)
			require.ErrorIs(t, apiErr, tt.err)
		})
	}

	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))
}

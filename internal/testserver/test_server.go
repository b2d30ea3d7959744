// Package testserver runs a fully wired roomstage MCP server over HTTP for
// end-to-end tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	"github.com/ganot/roomstage/internal/filestore"
	"github.com/ganot/roomstage/internal/mcp"
	"github.com/ganot/roomstage/internal/sqlite"
	"github.com/ganot/roomstage/internal/thumbnail"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server      *httptest.Server
	DB          *sqlite.DB
	Catalog     *asset.Catalog
	Store       *filestore.Store
	Projects    *project.Service
	RoomsDir    string
	ObjectsDir  string
	BundleDir   string
	ProjectsDir string
}

// New starts a server rooted in a fresh temporary documents directory.
func New(t *testing.T) *TestServer {
	t.Helper()
	return NewAt(t, t.TempDir())
}

// NewAt starts a server over an existing documents directory, loading any
// projects already on disk.
func NewAt(t *testing.T, documentsDir string) *TestServer {
	t.Helper()

	ts := &TestServer{
		RoomsDir:    filepath.Join(documentsDir, "Rooms", "Models"),
		ObjectsDir:  filepath.Join(documentsDir, "Objects", "Models"),
		BundleDir:   filepath.Join(documentsDir, "Bundle"),
		ProjectsDir: filepath.Join(documentsDir, "Projects"),
	}
	require.NoError(t, os.MkdirAll(ts.BundleDir, 0o755))

	db, err := sqlite.New(filepath.Join(documentsDir, "activity.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	ts.DB = db

	ts.Catalog = asset.NewCatalog(asset.CatalogConfig{
		RoomsDir:   ts.RoomsDir,
		ObjectsDir: ts.ObjectsDir,
		BundleDir:  ts.BundleDir,
	}, nil)
	require.NoError(t, ts.Catalog.EnsureDirectories())

	ts.Store = filestore.New(ts.ProjectsDir, ts.Catalog.Extension(), nil)
	require.NoError(t, ts.Store.EnsureRoot())

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	ts.Projects = project.NewService(ts.Store, ts.Catalog, nil,
		project.WithActivity(activitySvc),
		project.WithThumbnails(thumbnail.NewGenerator()),
	)
	_, err = ts.Projects.LoadAll(context.Background())
	require.NoError(t, err)

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: ts.Projects,
			Captures: ts.Catalog,
			Activity: activitySvc,
		},
	})
	ts.Server = httptest.NewServer(mcp.NewHTTPHandler(server, 0))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})

	return ts
}

// Connect opens an MCP client session against the server's /mcp endpoint.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "testserver-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint: ts.Server.URL + "/mcp",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// AddRoom writes a room capture file and returns its path.
func (ts *TestServer) AddRoom(t *testing.T, assetFileName, content string) string {
	t.Helper()
	path := filepath.Join(ts.RoomsDir, assetFileName+"."+ts.Catalog.Extension())
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CallTool invokes a tool and fails the test on protocol errors. Tool-level
// failures are reported through the result's IsError.
func CallTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

// Structured decodes the structured content of a successful tool result
// into a generic map.
func Structured(t *testing.T, res *sdkmcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError, "tool failed: %v", res.Content)
	out, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok, "unexpected structured content %T", res.StructuredContent)
	return out
}

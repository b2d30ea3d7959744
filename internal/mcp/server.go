package mcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	LoadAll(ctx context.Context) ([]project.Project, error)
	Projects() []project.Project
	Get(id string) (*project.Project, error)
	Create(ctx context.Context, name string, room *asset.Descriptor) (*project.Project, error)
	Rename(ctx context.Context, id, name string) (*project.Project, error)
	UpdateRoom(ctx context.Context, proj project.Project, room *asset.Descriptor) (*project.Project, error)
	Delete(ctx context.Context, proj project.Project) error
	Select(id string) error
	Selected() (*project.Project, bool)
	Status(ctx context.Context, proj project.Project) project.Status
	Statuses(ctx context.Context) map[string]project.Status
	SelectedRoom(ctx context.Context, proj project.Project) (asset.Descriptor, bool)
	Stats(ctx context.Context) project.Stats
	StorageInfo() (project.StorageInfo, error)
	Thumbnail(proj project.Project) ([]byte, error)
}

// CaptureCatalog defines the capture scanning operations needed by MCP.
type CaptureCatalog interface {
	Scan(ctx context.Context, kind asset.Kind) []asset.Descriptor
	Lookup(ctx context.Context, kind asset.Kind, id string) (asset.Descriptor, bool)
	DeleteCapture(d asset.Descriptor) error
	SourceStats(ctx context.Context) asset.SourceStats
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Record(ctx context.Context, entry *activity.Entry) error
	Recent(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Captures CaptureCatalog
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// host serialises every tool call. The lifecycle service keeps its
// collection in memory without locking, so all access goes through mu.
type host struct {
	services Services
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "roomstage",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	h := &host{services: cfg.Services, logger: logger}
	h.registerTools(server)

	return server
}

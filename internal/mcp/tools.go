package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultActivityLimit = 20

// ===== PROJECT TOOLS =====

type listProjectsInput struct{}

type listProjectsOutput struct {
	Projects []ProjectView `json:"projects" jsonschema:"Projects, newest first"`
	Count    int           `json:"count" jsonschema:"Number of projects returned"`
}

type getProjectInput struct {
	ID string `json:"id,omitempty" jsonschema:"Project ID (omit to get the selected project)"`
}

type getProjectOutput struct {
	Project        ProjectView  `json:"project" jsonschema:"The project"`
	Room           *CaptureView `json:"room,omitempty" jsonschema:"The selected room, when it still resolves"`
	ThumbnailBytes int          `json:"thumbnail_bytes" jsonschema:"Size of the stored thumbnail, 0 when absent"`
}

type createProjectInput struct {
	Name   string `json:"name,omitempty" jsonschema:"Project display name (a dated default is used when blank)"`
	RoomID string `json:"room_id,omitempty" jsonschema:"ID of a room capture from list_captures"`
}

type renameProjectInput struct {
	ID   string `json:"id" jsonschema:"Project ID"`
	Name string `json:"name" jsonschema:"New display name"`
}

type updateProjectRoomInput struct {
	ID     string `json:"id" jsonschema:"Project ID"`
	RoomID string `json:"room_id,omitempty" jsonschema:"ID of a room capture (omit to clear the room)"`
}

type projectIDInput struct {
	ID string `json:"id" jsonschema:"Project ID"`
}

type projectOutput struct {
	Project ProjectView `json:"project" jsonschema:"The project after the change"`
}

type deleteProjectOutput struct {
	DeletedID string `json:"deleted_id" jsonschema:"ID of the deleted project"`
}

// ===== CAPTURE TOOLS =====

type listCapturesInput struct {
	Kind string `json:"kind" jsonschema:"Capture kind: room or object"`
}

type listCapturesOutput struct {
	Captures []CaptureView `json:"captures" jsonschema:"Captures, newest first"`
	Count    int           `json:"count" jsonschema:"Number of captures returned"`
}

type deleteCaptureInput struct {
	Kind string `json:"kind" jsonschema:"Capture kind: room or object"`
	ID   string `json:"id" jsonschema:"Capture ID"`
}

type deleteCaptureOutput struct {
	Deleted CaptureView `json:"deleted" jsonschema:"The removed capture"`
}

// ===== STATS / ACTIVITY TOOLS =====

type projectStatsInput struct{}

type projectStatsOutput struct {
	Total             int    `json:"total" jsonschema:"Number of projects"`
	WithRooms         int    `json:"with_rooms" jsonschema:"Projects whose room still resolves"`
	WithoutRooms      int    `json:"without_rooms" jsonschema:"Projects without a resolvable room"`
	StorageBytes      int64  `json:"storage_bytes" jsonschema:"Bytes used by all project directories"`
	Storage           string `json:"storage" jsonschema:"Human readable storage use"`
	FileSystemRooms   int    `json:"file_system_rooms" jsonschema:"Captured rooms on disk"`
	BundleRooms       int    `json:"bundle_rooms" jsonschema:"Sample rooms shipped with the app"`
	FileSystemObjects int    `json:"file_system_objects" jsonschema:"Captured objects on disk"`
	BundleObjects     int    `json:"bundle_objects" jsonschema:"Sample objects shipped with the app"`
}

type recentActivityInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID to filter by"`
	Type      string `json:"type,omitempty" jsonschema:"Activity type to filter by"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum entries to return (default: 20)"`
	Offset    int    `json:"offset,omitempty" jsonschema:"Offset for pagination"`
}

type recentActivityOutput struct {
	Entries []ActivityView `json:"entries" jsonschema:"Activity entries, newest first"`
	Count   int            `json:"count" jsonschema:"Number of entries returned"`
}

func (h *host) registerTools(server *sdkmcp.Server) {
	h.registerProjectTools(server)
	h.registerCaptureTools(server)
	h.registerInsightTools(server)
}

func (h *host) registerProjectTools(server *sdkmcp.Server) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all projects with their derived status, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listProjectsInput) (*sdkmcp.CallToolResult, listProjectsOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		return nil, h.projectList(ctx), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "reload_projects",
		Description: "Reload projects from disk, clearing room references that no longer resolve",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listProjectsInput) (*sdkmcp.CallToolResult, listProjectsOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, err := h.services.Projects.LoadAll(ctx); err != nil {
			return nil, listProjectsOutput{}, toolError(err)
		}
		return nil, h.projectList(ctx), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project with its resolved room, or the selected project when no ID is given",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args getProjectInput) (*sdkmcp.CallToolResult, getProjectOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		proj, err := h.projectOrSelected(args.ID)
		if err != nil {
			return nil, getProjectOutput{}, toolError(err)
		}

		out := getProjectOutput{Project: h.projectView(ctx, *proj)}
		if room, ok := h.services.Projects.SelectedRoom(ctx, *proj); ok {
			view := newCaptureView(room)
			out.Room = &view
		}
		thumb, err := h.services.Projects.Thumbnail(*proj)
		if err != nil {
			h.logger.WarnContext(ctx, "failed to load thumbnail", "project_id", proj.ID, "error", err)
		}
		out.ThumbnailBytes = len(thumb)
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a project, optionally copying a room capture into it",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args createProjectInput) (*sdkmcp.CallToolResult, projectOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		var room *asset.Descriptor
		if args.RoomID != "" {
			d, err := h.lookupCapture(ctx, asset.KindRoom, args.RoomID)
			if err != nil {
				return nil, projectOutput{}, toolError(err)
			}
			room = &d
		}

		proj, err := h.services.Projects.Create(ctx, args.Name, room)
		if err != nil {
			return nil, projectOutput{}, toolError(err)
		}
		return h.projectResult(ctx, "Created project", *proj)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_project",
		Description: "Rename a project; its directory on disk is unchanged",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args renameProjectInput) (*sdkmcp.CallToolResult, projectOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		proj, err := h.services.Projects.Rename(ctx, args.ID, args.Name)
		if err != nil {
			return nil, projectOutput{}, toolError(err)
		}
		return h.projectResult(ctx, "Renamed project", *proj)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project_room",
		Description: "Point a project at a different room capture, or clear its room when room_id is omitted",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args updateProjectRoomInput) (*sdkmcp.CallToolResult, projectOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		proj, err := h.services.Projects.Get(args.ID)
		if err != nil {
			return nil, projectOutput{}, toolError(err)
		}

		var room *asset.Descriptor
		if args.RoomID != "" {
			d, err := h.lookupCapture(ctx, asset.KindRoom, args.RoomID)
			if err != nil {
				return nil, projectOutput{}, toolError(err)
			}
			room = &d
		}

		updated, err := h.services.Projects.UpdateRoom(ctx, *proj, room)
		if err != nil {
			return nil, projectOutput{}, toolError(err)
		}
		return h.projectResult(ctx, "Updated room for", *updated)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project and everything in its directory",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDInput) (*sdkmcp.CallToolResult, deleteProjectOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		proj, err := h.services.Projects.Get(args.ID)
		if err != nil {
			return nil, deleteProjectOutput{}, toolError(err)
		}
		if err := h.services.Projects.Delete(ctx, *proj); err != nil {
			return nil, deleteProjectOutput{}, toolError(err)
		}
		return nil, deleteProjectOutput{DeletedID: proj.ID}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_project",
		Description: "Mark a project as the current one",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDInput) (*sdkmcp.CallToolResult, projectOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if err := h.services.Projects.Select(args.ID); err != nil {
			return nil, projectOutput{}, toolError(err)
		}
		proj, err := h.services.Projects.Get(args.ID)
		if err != nil {
			return nil, projectOutput{}, toolError(err)
		}
		return h.projectResult(ctx, "Selected project", *proj)
	})
}

func (h *host) registerCaptureTools(server *sdkmcp.Server) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_captures",
		Description: "List room or object captures, including bundled samples, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args listCapturesInput) (*sdkmcp.CallToolResult, listCapturesOutput, error) {
		kind, err := asset.ParseKind(args.Kind)
		if err != nil {
			return nil, listCapturesOutput{}, toolError(err)
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		scanned := h.services.Captures.Scan(ctx, kind)
		out := listCapturesOutput{Captures: make([]CaptureView, 0, len(scanned))}
		for _, d := range scanned {
			out.Captures = append(out.Captures, newCaptureView(d))
		}
		out.Count = len(out.Captures)
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_capture",
		Description: "Delete a captured file from disk; bundled samples are read-only",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args deleteCaptureInput) (*sdkmcp.CallToolResult, deleteCaptureOutput, error) {
		kind, err := asset.ParseKind(args.Kind)
		if err != nil {
			return nil, deleteCaptureOutput{}, toolError(err)
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		d, err := h.lookupCapture(ctx, kind, args.ID)
		if err != nil {
			return nil, deleteCaptureOutput{}, toolError(err)
		}
		view := newCaptureView(d)
		if err := h.services.Captures.DeleteCapture(d); err != nil {
			return nil, deleteCaptureOutput{}, toolError(err)
		}

		h.logger.InfoContext(ctx, "capture deleted", "kind", kind, "id", d.ID, "file", d.FileName)
		entry := &activity.Entry{
			Type:    activity.TypeCaptureDeleted,
			Summary: fmt.Sprintf("Deleted %s capture %s", kind, d.Name),
		}
		if kind == asset.KindRoom {
			entry.RoomID = &d.ID
		}
		h.record(ctx, entry)

		return nil, deleteCaptureOutput{Deleted: view}, nil
	})
}

func (h *host) registerInsightTools(server *sdkmcp.Server) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project_stats",
		Description: "Count projects by room state and report storage and capture totals",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ projectStatsInput) (*sdkmcp.CallToolResult, projectStatsOutput, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		stats := h.services.Projects.Stats(ctx)
		storage, err := h.services.Projects.StorageInfo()
		if err != nil {
			return nil, projectStatsOutput{}, toolError(err)
		}
		sources := h.services.Captures.SourceStats(ctx)

		return nil, projectStatsOutput{
			Total:             stats.Total,
			WithRooms:         stats.WithRooms,
			WithoutRooms:      stats.WithoutRooms,
			StorageBytes:      storage.Bytes,
			Storage:           storage.Label,
			FileSystemRooms:   sources.FileSystemRooms,
			BundleRooms:       sources.BundleRooms,
			FileSystemObjects: sources.FileSystemObjects,
			BundleObjects:     sources.BundleObjects,
		}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "Get recent lifecycle events, optionally for one project or event type",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args recentActivityInput) (*sdkmcp.CallToolResult, recentActivityOutput, error) {
		if h.services.Activity == nil {
			return nil, recentActivityOutput{Entries: []ActivityView{}}, nil
		}

		opts := activity.ListOptions{
			ProjectID: args.ProjectID,
			Limit:     args.Limit,
			Offset:    args.Offset,
		}
		if opts.Limit <= 0 {
			opts.Limit = defaultActivityLimit
		}
		if typ := strings.TrimSpace(args.Type); typ != "" {
			t := activity.Type(typ)
			opts.Type = &t
		}

		entries, err := h.services.Activity.Recent(ctx, opts)
		if err != nil {
			return nil, recentActivityOutput{}, toolError(err)
		}
		out := recentActivityOutput{Entries: make([]ActivityView, 0, len(entries))}
		for _, e := range entries {
			out.Entries = append(out.Entries, newActivityView(e))
		}
		out.Count = len(out.Entries)
		return nil, out, nil
	})
}

func (h *host) projectList(ctx context.Context) listProjectsOutput {
	projects := h.services.Projects.Projects()
	statuses := h.services.Projects.Statuses(ctx)
	selectedID := h.selectedID()

	out := listProjectsOutput{Projects: make([]ProjectView, 0, len(projects))}
	for _, p := range projects {
		out.Projects = append(out.Projects, newProjectView(p, statuses[p.ID], selectedID))
	}
	out.Count = len(out.Projects)
	return out
}

func (h *host) projectView(ctx context.Context, p project.Project) ProjectView {
	return newProjectView(p, h.services.Projects.Status(ctx, p), h.selectedID())
}

func (h *host) projectResult(ctx context.Context, verb string, p project.Project) (*sdkmcp.CallToolResult, projectOutput, error) {
	view := h.projectView(ctx, p)
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: fmt.Sprintf("%s %s (%s)", verb, view.Name, view.Status)},
		},
	}, projectOutput{Project: view}, nil
}

func (h *host) selectedID() string {
	if p, ok := h.services.Projects.Selected(); ok {
		return p.ID
	}
	return ""
}

func (h *host) projectOrSelected(id string) (*project.Project, error) {
	if id != "" {
		return h.services.Projects.Get(id)
	}
	if p, ok := h.services.Projects.Selected(); ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: no project selected", project.ErrProjectNotFound)
}

func (h *host) lookupCapture(ctx context.Context, kind asset.Kind, id string) (asset.Descriptor, error) {
	d, ok := h.services.Captures.Lookup(ctx, kind, id)
	if !ok {
		return asset.Descriptor{}, fmt.Errorf("%w: %s %s", ErrCaptureNotFound, kind, id)
	}
	return d, nil
}

func (h *host) record(ctx context.Context, entry *activity.Entry) {
	if h.services.Activity == nil {
		return
	}
	if err := h.services.Activity.Record(ctx, entry); err != nil {
		h.logger.WarnContext(ctx, "failed to record activity", "type", entry.Type, "error", err)
	}
}

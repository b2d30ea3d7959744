package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `roomstage manages staging projects built from room and object captures.

Core concepts:
- Capture: a scanned 3D file (room or object). Captures are either on disk ("Captured", deletable) or bundled samples ("Sample", read-only).
- Project: a directory holding project.json, a thumbnail, and an Assets folder with a copy of its room capture.
- Status: derived, never stored. asset_ready (room copied into the project), room_selected_not_copied (room chosen, not yet copied), no_room.

Default workflow:
1) Orient: list_projects, then get_project for details.
2) Pick a room: list_captures(kind="room").
3) Mutate: create_project / rename_project / update_project_room / delete_project.
4) Review: get_project_stats and get_recent_activity.

Docs:
- roomstage://docs/index
- roomstage://docs/lifecycle
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "roomstage://docs/index",
		Name:        "docs_index",
		Title:       "roomstage docs index",
		Description: "Entry point: tools, concepts, and what to read next.",
		Content: `# roomstage: Agent Docs Index

## Quick start

1. ` + "`list_projects`" + ` to see every project with its status.
2. ` + "`list_captures`" + ` with ` + "`kind=room`" + ` to find a room ID.
3. ` + "`create_project`" + ` with a name and optional ` + "`room_id`" + `.
4. ` + "`update_project_room`" + ` to switch rooms (omit ` + "`room_id`" + ` to clear).

## Tools

- Projects: ` + "`list_projects`" + `, ` + "`reload_projects`" + `, ` + "`get_project`" + `, ` + "`create_project`" + `, ` + "`rename_project`" + `, ` + "`update_project_room`" + `, ` + "`delete_project`" + `, ` + "`select_project`" + `.
- Captures: ` + "`list_captures`" + `, ` + "`delete_capture`" + `.
- Insight: ` + "`get_project_stats`" + `, ` + "`get_recent_activity`" + `.

## Limitations

- Bundled samples cannot be deleted (` + "`READ_ONLY_SAMPLE`" + `).
- Deleting a capture does not touch projects that copied it; their Assets folder keeps the copy.
`,
	},
	{
		URI:         "roomstage://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Project lifecycle",
		Description: "How projects are stored, how status is derived, and what happens on load.",
		Content: `# Project lifecycle

## Layout

` + "```" + `
<documents>/Rooms/Models/*.usdz
<documents>/Objects/Models/*.usdz
<documents>/Projects/<name>_<id8>/project.json
                                 /thumbnail.png
                                 /Assets/<room>.usdz
` + "```" + `

The directory name is fixed at creation. Renaming a project only changes project.json.

## Status

1. A capture file in Assets means ` + "`asset_ready`" + `, even if the source capture was deleted.
2. Otherwise a room reference that still resolves means ` + "`room_selected_not_copied`" + `.
3. Otherwise ` + "`no_room`" + `.

## Loading

On startup and on ` + "`reload_projects`" + `, unreadable project directories are skipped and
room references that no longer resolve are cleared and saved back to disk.

## Changing rooms

The Assets folder is emptied before the new room is copied, so it only ever holds
the current room. Clearing the room empties it too.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

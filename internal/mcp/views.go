package mcp

import (
	"time"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
)

// ProjectView is the wire form of a project.
type ProjectView struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	SelectedRoomID *string `json:"selected_room_id,omitempty"`
	Status         string  `json:"status"`
	Selected       bool    `json:"selected"`
	CreatedAt      string  `json:"created_at"`
	LastModifiedAt string  `json:"last_modified_at"`
	FolderPath     string  `json:"folder_path,omitempty"`
}

// CaptureView is the wire form of a capture descriptor.
type CaptureView struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	FileName      string `json:"file_name"`
	AssetFileName string `json:"asset_file_name"`
	CapturedAt    string `json:"captured_at"`
	Size          string `json:"size"`
	SizeBytes     int64  `json:"size_bytes"`
	Provenance    string `json:"provenance"`
	Available     bool   `json:"available"`
	Deletable     bool   `json:"deletable"`
	Path          string `json:"path,omitempty"`
}

// ActivityView is the wire form of a journal entry.
type ActivityView struct {
	ID        int64   `json:"id"`
	ProjectID string  `json:"project_id,omitempty"`
	RoomID    *string `json:"room_id,omitempty"`
	Type      string  `json:"type"`
	Summary   string  `json:"summary"`
	Details   string  `json:"details,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func newProjectView(p project.Project, status project.Status, selectedID string) ProjectView {
	view := ProjectView{
		ID:             p.ID,
		Name:           p.DisplayName(),
		Status:         string(status),
		Selected:       selectedID != "" && p.ID == selectedID,
		CreatedAt:      formatTime(p.CreatedAt),
		LastModifiedAt: formatTime(p.LastModifiedAt),
		FolderPath:     p.Dir(),
	}
	if id := p.RoomID(); id != "" {
		view.SelectedRoomID = &id
	}
	return view
}

func newCaptureView(d asset.Descriptor) CaptureView {
	path, ok := d.ResolvedPath()
	return CaptureView{
		ID:            d.ID,
		Kind:          string(d.Kind),
		Name:          d.Name,
		FileName:      d.FileName,
		AssetFileName: d.AssetFileName,
		CapturedAt:    formatTime(d.CapturedAt),
		Size:          d.SizeLabel,
		SizeBytes:     d.SizeBytes,
		Provenance:    d.ProvenanceLabel(),
		Available:     ok,
		Deletable:     d.Deletable(),
		Path:          path,
	}
}

func newActivityView(e activity.Entry) ActivityView {
	return ActivityView{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		RoomID:    e.RoomID,
		Type:      string(e.Type),
		Summary:   e.Summary,
		Details:   e.Details,
		CreatedAt: formatTime(e.CreatedAt),
	}
}

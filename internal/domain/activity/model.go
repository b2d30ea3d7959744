package activity

import "time"

// Type represents the type of lifecycle event
type Type string

const (
	TypeProjectCreated       Type = "project_created"
	TypeProjectUpdated       Type = "project_updated"
	TypeRoomUpdated          Type = "room_updated"
	TypeProjectDeleted       Type = "project_deleted"
	TypeRoomReferenceCleared Type = "room_reference_cleared"
	TypeCaptureDeleted       Type = "capture_deleted"
)

// Entry represents an event in the activity journal
type Entry struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id,omitempty"`
	RoomID    *string   `json:"room_id,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}

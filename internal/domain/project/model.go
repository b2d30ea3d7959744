package project

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// On-disk names inside a project directory.
const (
	MetadataFileName  = "project.json"
	ThumbnailFileName = "thumbnail.png"
	AssetsDirName     = "Assets"
)

const untitledName = "Untitled Project"

// Project is a user-named container linking at most one selected room to a
// copied asset, persisted in its own directory.
//
// project.json stores CreatedAt and LastModifiedAt as RFC 3339 with whole
// seconds. Sub-second precision does not survive a save and load, so the
// service truncates both to the second when it sets them.
type Project struct {
	ID             string
	Name           string
	SelectedRoomID *string
	CreatedAt      time.Time
	LastModifiedAt time.Time
	ThumbnailData  []byte
	// FolderPath is nil until the project directory has been created.
	FolderPath *string
}

// DisplayName returns the name, or a placeholder when it is empty.
func (p *Project) DisplayName() string {
	if p.Name == "" {
		return untitledName
	}
	return p.Name
}

// IsPersisted reports whether the project has a directory on disk.
func (p *Project) IsPersisted() bool {
	return p.FolderPath != nil && *p.FolderPath != ""
}

// Dir returns the project directory, or "" when unsaved.
func (p *Project) Dir() string {
	if !p.IsPersisted() {
		return ""
	}
	return *p.FolderPath
}

// MetadataPath returns the project.json path, or "" when unsaved.
func (p *Project) MetadataPath() string {
	return p.join(MetadataFileName)
}

// AssetsDir returns the Assets subdirectory, or "" when unsaved.
func (p *Project) AssetsDir() string {
	return p.join(AssetsDirName)
}

// ThumbnailPath returns the thumbnail.png path, or "" when unsaved.
func (p *Project) ThumbnailPath() string {
	return p.join(ThumbnailFileName)
}

func (p *Project) join(name string) string {
	dir := p.Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// RoomID returns the selected room ID or "".
func (p *Project) RoomID() string {
	if p.SelectedRoomID == nil {
		return ""
	}
	return *p.SelectedRoomID
}

// SetRoomID sets or clears the selected room reference.
func (p *Project) SetRoomID(id string) {
	if id == "" {
		p.SelectedRoomID = nil
		return
	}
	p.SelectedRoomID = &id
}

// Clone returns a copy that shares no pointers with p.
func (p Project) Clone() Project {
	if p.SelectedRoomID != nil {
		id := *p.SelectedRoomID
		p.SelectedRoomID = &id
	}
	if p.FolderPath != nil {
		path := *p.FolderPath
		p.FolderPath = &path
	}
	if p.ThumbnailData != nil {
		p.ThumbnailData = append([]byte(nil), p.ThumbnailData...)
	}
	return p
}

// metadata is the persisted project.json layout.
type metadata struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SelectedRoomID    *string `json:"selectedRoomId"`
	CreatedDate       string  `json:"createdDate"`
	LastModified      string  `json:"lastModified"`
	ThumbnailData     []byte  `json:"thumbnailData"`
	ProjectFolderPath *string `json:"projectFolderPath"`
}

// MarshalJSON encodes the project in the project.json layout with ISO-8601
// timestamps at second precision.
func (p Project) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadata{
		ID:                p.ID,
		Name:              p.Name,
		SelectedRoomID:    p.SelectedRoomID,
		CreatedDate:       p.CreatedAt.UTC().Format(time.RFC3339),
		LastModified:      p.LastModifiedAt.UTC().Format(time.RFC3339),
		ThumbnailData:     p.ThumbnailData,
		ProjectFolderPath: p.FolderPath,
	})
}

// UnmarshalJSON decodes the project.json layout.
func (p *Project) UnmarshalJSON(data []byte) error {
	var m metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m.ID == "" {
		return fmt.Errorf("missing project id")
	}
	created, err := time.Parse(time.RFC3339, m.CreatedDate)
	if err != nil {
		return fmt.Errorf("createdDate: %w", err)
	}
	modified, err := time.Parse(time.RFC3339, m.LastModified)
	if err != nil {
		return fmt.Errorf("lastModified: %w", err)
	}
	*p = Project{
		ID:             m.ID,
		Name:           m.Name,
		SelectedRoomID: m.SelectedRoomID,
		CreatedAt:      created.UTC(),
		LastModifiedAt: modified.UTC(),
		ThumbnailData:  m.ThumbnailData,
		FolderPath:     m.ProjectFolderPath,
	}
	return nil
}

// Stats summarises room linkage across projects.
type Stats struct {
	Total        int `json:"total"`
	WithRooms    int `json:"with_rooms"`
	WithoutRooms int `json:"without_rooms"`
}

// StorageInfo reports disk usage of the projects root.
type StorageInfo struct {
	Bytes int64  `json:"bytes"`
	Label string `json:"label"`
}

package project

import (
	"context"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
)

// Store provides on-disk persistence for projects.
type Store interface {
	CreateDirectory(p *Project) (string, error)
	SaveMetadata(p *Project) error
	LoadMetadata(dir string) (*Project, error)
	LoadAll() ([]Project, error)
	CopyAssetFile(src asset.Descriptor, p *Project) (string, error)
	ClearAssets(p *Project, keep ...string) error
	SaveThumbnail(data []byte, p *Project) error
	LoadThumbnail(p *Project) ([]byte, error)
	DeleteProjectDirectory(p *Project) error
	DirectorySize() (int64, error)
}

// Catalog provides the current room captures.
type Catalog interface {
	Scan(ctx context.Context, kind asset.Kind) []asset.Descriptor
	Extension() string
}

// ActivityRecorder journals lifecycle events.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.Entry) error
}

// ThumbnailGenerator renders a placeholder thumbnail for a project.
type ThumbnailGenerator interface {
	Placeholder(hasRoom bool) ([]byte, error)
}

package mocks

import (
	"context"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectStore is a mock for project.Store.
type ProjectStore struct {
	mock.Mock
}

func (m *ProjectStore) CreateDirectory(p *project.Project) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}

func (m *ProjectStore) SaveMetadata(p *project.Project) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *ProjectStore) LoadMetadata(dir string) (*project.Project, error) {
	args := m.Called(dir)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectStore) LoadAll() ([]project.Project, error) {
	args := m.Called()
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectStore) CopyAssetFile(src asset.Descriptor, p *project.Project) (string, error) {
	args := m.Called(src, p)
	return args.String(0), args.Error(1)
}

func (m *ProjectStore) ClearAssets(p *project.Project, keep ...string) error {
	args := m.Called(p, keep)
	return args.Error(0)
}

func (m *ProjectStore) SaveThumbnail(data []byte, p *project.Project) error {
	args := m.Called(data, p)
	return args.Error(0)
}

func (m *ProjectStore) LoadThumbnail(p *project.Project) ([]byte, error) {
	args := m.Called(p)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectStore) DeleteProjectDirectory(p *project.Project) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *ProjectStore) DirectorySize() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// Catalog is a mock for project.Catalog.
type Catalog struct {
	mock.Mock
}

func (m *Catalog) Scan(ctx context.Context, kind asset.Kind) []asset.Descriptor {
	args := m.Called(ctx, kind)
	if list, ok := args.Get(0).([]asset.Descriptor); ok {
		return list
	}
	return nil
}

func (m *Catalog) Extension() string {
	args := m.Called()
	return args.String(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRecorder is a mock for project.ActivityRecorder.
type ActivityRecorder struct {
	mock.Mock
}

func (m *ActivityRecorder) Record(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

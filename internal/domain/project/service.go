package project

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/repository"
	"github.com/google/uuid"
)

const defaultNameLayout = "Jan 02, 2006 at 15:04"

// Service owns the in-memory project collection (newest first) and
// coordinates the catalog and store for every lifecycle operation.
//
// Service is not safe for concurrent use. Hosts that call it from several
// goroutines must serialise access themselves.
type Service struct {
	store    Store
	catalog  Catalog
	activity ActivityRecorder
	thumbs   ThumbnailGenerator
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	projects   []Project
	selectedID string
}

// Option configures a Service.
type Option func(*Service)

// WithActivity journals lifecycle events to rec.
func WithActivity(rec ActivityRecorder) Option {
	return func(s *Service) { s.activity = rec }
}

// WithThumbnails writes a placeholder thumbnail for every new project.
func WithThumbnails(gen ThumbnailGenerator) Option {
	return func(s *Service) { s.thumbs = gen }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how new project IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a new project service.
func NewService(store Store, catalog Catalog, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:   store,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultName is the name given to projects created without one.
func DefaultName(t time.Time) string {
	return "Project " + t.Format(defaultNameLayout)
}

// Create persists a new project, copying room's capture into it when given.
// A failure before the metadata is written removes the partial directory.
func (s *Service) Create(ctx context.Context, name string, room *asset.Descriptor) (*Project, error) {
	now := s.now()
	if strings.TrimSpace(name) == "" {
		name = DefaultName(now)
	}
	stamp := now.UTC().Truncate(time.Second)

	proj := Project{
		ID:             s.newID(),
		Name:           name,
		CreatedAt:      stamp,
		LastModifiedAt: stamp,
	}
	if room != nil {
		proj.SetRoomID(room.ID)
	}

	dir, err := s.store.CreateDirectory(&proj)
	if err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}
	proj.FolderPath = &dir

	if room != nil {
		if _, err := s.store.CopyAssetFile(*room, &proj); err != nil {
			s.rollback(ctx, &proj)
			return nil, fmt.Errorf("copying room asset: %w", err)
		}
	}

	if err := s.store.SaveMetadata(&proj); err != nil {
		s.rollback(ctx, &proj)
		return nil, fmt.Errorf("saving project metadata: %w", err)
	}

	s.writePlaceholder(ctx, &proj, room != nil)

	s.projects = append([]Project{proj.Clone()}, s.projects...)
	s.logger.InfoContext(ctx, "project created", "id", proj.ID, "name", proj.Name, "path", dir, "room_id", proj.RoomID())
	s.record(ctx, activity.TypeProjectCreated, &proj, "Created project "+proj.DisplayName())

	out := proj.Clone()
	return &out, nil
}

// LoadAll replaces the in-memory collection with the projects on disk and
// clears room references that no longer resolve. Cleared references are
// re-persisted best-effort.
func (s *Service) LoadAll(ctx context.Context) ([]Project, error) {
	loaded, err := s.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	rooms := s.rooms(ctx)
	for i := range loaded {
		proj := &loaded[i]
		if proj.SelectedRoomID == nil || ResolveRoom(proj, rooms) != nil {
			continue
		}

		stale := *proj.SelectedRoomID
		proj.SelectedRoomID = nil
		s.logger.WarnContext(ctx, "room for project no longer exists", "project", proj.DisplayName(), "room_id", stale)

		if err := s.store.SaveMetadata(proj); err != nil {
			s.logger.ErrorContext(ctx, "failed to persist cleared room reference", "project_id", proj.ID, "error", err)
			continue
		}
		s.record(ctx, activity.TypeRoomReferenceCleared, proj, "Cleared missing room "+stale)
	}

	s.projects = make([]Project, 0, len(loaded))
	for _, proj := range loaded {
		s.projects = append(s.projects, proj.Clone())
	}
	if s.selectedID != "" && s.indexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}

	s.logger.InfoContext(ctx, "projects loaded", "count", len(loaded))
	return loaded, nil
}

// Projects returns a copy of the in-memory collection, newest first.
func (s *Service) Projects() []Project {
	out := make([]Project, 0, len(s.projects))
	for _, proj := range s.projects {
		out = append(out, proj.Clone())
	}
	return out
}

// Get returns the in-memory project with the given ID.
func (s *Service) Get(id string) (*Project, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}
	out := s.projects[idx].Clone()
	return &out, nil
}

// Update stamps the modification time, persists proj, and replaces the
// in-memory entry with the same ID.
func (s *Service) Update(ctx context.Context, proj Project) (*Project, error) {
	idx := s.indexOf(proj.ID)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}

	updated := s.withKnownFolder(proj, idx)
	updated.LastModifiedAt = s.now().UTC().Truncate(time.Second)

	if err := s.store.SaveMetadata(&updated); err != nil {
		return nil, fmt.Errorf("saving project metadata: %w", err)
	}

	s.projects[idx] = updated.Clone()
	s.logger.InfoContext(ctx, "project updated", "id", updated.ID, "name", updated.Name)
	s.record(ctx, activity.TypeProjectUpdated, &updated, "Updated project "+updated.DisplayName())

	out := updated.Clone()
	return &out, nil
}

// Rename changes a project's name.
func (s *Service) Rename(ctx context.Context, id, name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	proj, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	proj.Name = name
	return s.Update(ctx, *proj)
}

// UpdateRoom points the project at room, or at no room when room is nil.
// The new capture is copied before the old one is removed, so the Assets
// directory only ever holds the current room's capture and a failed copy
// leaves the previous asset in place.
func (s *Service) UpdateRoom(ctx context.Context, proj Project, room *asset.Descriptor) (*Project, error) {
	idx := s.indexOf(proj.ID)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}
	if room != nil && !room.IsAvailable() {
		return nil, fmt.Errorf("%w: %s", repository.ErrSourceNotFound, room.AssetFileName)
	}

	updated := s.withKnownFolder(proj, idx)
	if room != nil {
		name, err := s.store.CopyAssetFile(*room, &updated)
		if err != nil {
			return nil, fmt.Errorf("copying room asset: %w", err)
		}
		if err := s.store.ClearAssets(&updated, name); err != nil {
			return nil, fmt.Errorf("clearing previous assets: %w", err)
		}
		updated.SetRoomID(room.ID)
	} else {
		if err := s.store.ClearAssets(&updated); err != nil {
			return nil, fmt.Errorf("clearing project assets: %w", err)
		}
		updated.SelectedRoomID = nil
	}
	updated.LastModifiedAt = s.now().UTC().Truncate(time.Second)

	if err := s.store.SaveMetadata(&updated); err != nil {
		return nil, fmt.Errorf("saving project metadata: %w", err)
	}

	s.projects[idx] = updated.Clone()
	s.logger.InfoContext(ctx, "project room updated", "id", updated.ID, "room_id", updated.RoomID())
	s.record(ctx, activity.TypeRoomUpdated, &updated, "Updated room for "+updated.DisplayName())

	out := updated.Clone()
	return &out, nil
}

// Delete removes the project directory and drops the project from memory.
func (s *Service) Delete(ctx context.Context, proj Project) error {
	if idx := s.indexOf(proj.ID); idx >= 0 && !proj.IsPersisted() {
		proj = s.projects[idx].Clone()
	}
	if err := s.store.DeleteProjectDirectory(&proj); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	if idx := s.indexOf(proj.ID); idx >= 0 {
		s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	}
	if s.selectedID == proj.ID {
		s.selectedID = ""
	}

	s.logger.InfoContext(ctx, "project deleted", "id", proj.ID, "name", proj.DisplayName())
	s.record(ctx, activity.TypeProjectDeleted, &proj, "Deleted project "+proj.DisplayName())
	return nil
}

// Select marks a loaded project as the current one.
func (s *Service) Select(id string) error {
	if s.indexOf(id) < 0 {
		return ErrProjectNotFound
	}
	s.selectedID = id
	return nil
}

// Selected returns the current project, if any.
func (s *Service) Selected() (*Project, bool) {
	if s.selectedID == "" {
		return nil, false
	}
	proj, err := s.Get(s.selectedID)
	if err != nil {
		return nil, false
	}
	return proj, true
}

// Status derives the display status of proj against a fresh room scan.
func (s *Service) Status(ctx context.Context, proj Project) Status {
	return DeriveStatus(&proj, s.rooms(ctx), s.catalog.Extension())
}

// Statuses derives the status of every loaded project from one room scan.
func (s *Service) Statuses(ctx context.Context) map[string]Status {
	rooms := s.rooms(ctx)
	out := make(map[string]Status, len(s.projects))
	for i := range s.projects {
		out[s.projects[i].ID] = DeriveStatus(&s.projects[i], rooms, s.catalog.Extension())
	}
	return out
}

// SelectedRoom resolves the project's room against a fresh scan.
func (s *Service) SelectedRoom(ctx context.Context, proj Project) (asset.Descriptor, bool) {
	room := ResolveRoom(&proj, s.rooms(ctx))
	if room == nil {
		return asset.Descriptor{}, false
	}
	return *room, true
}

// Stats counts loaded projects with and without a resolvable room.
func (s *Service) Stats(ctx context.Context) Stats {
	rooms := s.rooms(ctx)
	stats := Stats{Total: len(s.projects)}
	for i := range s.projects {
		if ResolveRoom(&s.projects[i], rooms) != nil {
			stats.WithRooms++
		}
	}
	stats.WithoutRooms = stats.Total - stats.WithRooms
	return stats
}

// StorageInfo reports how much disk space the projects use.
func (s *Service) StorageInfo() (StorageInfo, error) {
	size, err := s.store.DirectorySize()
	if err != nil {
		return StorageInfo{}, err
	}
	return StorageInfo{Bytes: size, Label: humanize.Bytes(uint64(size))}, nil
}

// Thumbnail returns the stored thumbnail, or nil when there is none.
func (s *Service) Thumbnail(proj Project) ([]byte, error) {
	return s.store.LoadThumbnail(&proj)
}

func (s *Service) rooms(ctx context.Context) []asset.Descriptor {
	scanned := s.catalog.Scan(ctx, asset.KindRoom)
	available := make([]asset.Descriptor, 0, len(scanned))
	for _, d := range scanned {
		if d.IsAvailable() {
			available = append(available, d)
		}
	}
	return available
}

func (s *Service) indexOf(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// withKnownFolder copies proj, filling in the folder from the in-memory entry
// when the caller's copy lacks one.
func (s *Service) withKnownFolder(proj Project, idx int) Project {
	out := proj.Clone()
	if !out.IsPersisted() {
		out.FolderPath = s.projects[idx].Clone().FolderPath
	}
	return out
}

func (s *Service) rollback(ctx context.Context, proj *Project) {
	if err := s.store.DeleteProjectDirectory(proj); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove partial project directory", "path", proj.Dir(), "error", err)
	}
}

func (s *Service) writePlaceholder(ctx context.Context, proj *Project, hasRoom bool) {
	if s.thumbs == nil {
		return
	}
	data, err := s.thumbs.Placeholder(hasRoom)
	if err == nil {
		err = s.store.SaveThumbnail(data, proj)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to save placeholder thumbnail", "project_id", proj.ID, "error", err)
	}
}

func (s *Service) record(ctx context.Context, typ activity.Type, proj *Project, summary string) {
	if s.activity == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{
		"name":   proj.DisplayName(),
		"folder": proj.Dir(),
	})
	entry := &activity.Entry{
		ProjectID: proj.ID,
		Type:      typ,
		Summary:   summary,
		Details:   string(details),
	}
	if id := proj.RoomID(); id != "" {
		entry.RoomID = &id
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record activity", "type", typ, "project_id", proj.ID, "error", err)
	}
}

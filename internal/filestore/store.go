// Package filestore persists projects as directories under a projects root:
//
//	<root>/<sanitized-name>_<id8>/
//	    project.json
//	    thumbnail.png
//	    Assets/<asset>.<ext>
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	"github.com/ganot/roomstage/internal/repository"
)

// idPrefixLen is how many characters of the project ID go into its folder name.
const idPrefixLen = 8

// partialSuffix marks an asset copy that has not been renamed into place yet.
const partialSuffix = ".partial"

var invalidNameChars = strings.NewReplacer(
	":", "_", "/", "_", `\`, "_", "?", "_", "%", "_",
	"*", "_", "|", "_", `"`, "_", "<", "_", ">", "_",
)

// Store implements project.Store on the local file system.
type Store struct {
	root      string
	extension string
	logger    *slog.Logger
}

// New creates a store rooted at the projects directory. ext is the capture
// file extension used for copied assets.
func New(root, ext string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if ext == "" {
		ext = asset.DefaultExtension
	}
	return &Store{root: root, extension: strings.TrimPrefix(ext, "."), logger: logger}
}

// Root returns the projects directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the projects directory if missing.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: create projects directory: %w", repository.ErrIO, err)
	}
	return nil
}

// SanitizeFileName replaces characters that are unsafe in folder names.
func SanitizeFileName(name string) string {
	return invalidNameChars.Replace(name)
}

// FolderName is the directory name used for a project.
func FolderName(p *project.Project) string {
	id := p.ID
	if len(id) > idPrefixLen {
		id = id[:idPrefixLen]
	}
	return SanitizeFileName(p.DisplayName() + "_" + id)
}

// CreateDirectory creates the project directory and its Assets subdirectory
// and returns the directory path. It does not modify p.
func (s *Store) CreateDirectory(p *project.Project) (string, error) {
	dir := filepath.Join(s.root, FolderName(p))
	if err := os.MkdirAll(filepath.Join(dir, project.AssetsDirName), 0o755); err != nil {
		return "", fmt.Errorf("%w: create project directory %s: %w", repository.ErrIO, dir, err)
	}
	s.logger.Debug("created project directory", "path", dir)
	return dir, nil
}

// SaveMetadata writes project.json, replacing any existing file.
func (s *Store) SaveMetadata(p *project.Project) error {
	path := p.MetadataPath()
	if path == "" {
		return repository.ErrInvalidPath
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode project %s: %w", repository.ErrSerialization, p.ID, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write metadata: %w", repository.ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replace metadata: %w", repository.ErrIO, err)
	}

	s.logger.Debug("saved project metadata", "path", path)
	return nil
}

// LoadMetadata reads project.json from dir. The returned project's FolderPath
// is always dir, whatever the file says.
func (s *Store) LoadMetadata(dir string) (*project.Project, error) {
	path := filepath.Join(dir, project.MetadataFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: read metadata: %w", repository.ErrIO, err)
	}

	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", repository.ErrSerialization, path, err)
	}
	p.FolderPath = &dir
	return &p, nil
}

// LoadAll loads every project under the root, newest first. Directories that
// fail to load are logged and skipped.
func (s *Store) LoadAll() ([]project.Project, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []project.Project{}, nil
		}
		return nil, fmt.Errorf("%w: list projects: %w", repository.ErrIO, err)
	}

	projects := make([]project.Project, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, entry.Name())
		p, err := s.LoadMetadata(dir)
		if err != nil {
			s.logger.Warn("failed to load project", "path", dir, "error", err)
			continue
		}
		projects = append(projects, *p)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	s.logger.Debug("loaded projects", "count", len(projects))
	return projects, nil
}

// AssetFileName is the destination name of a copied capture.
func (s *Store) AssetFileName(src asset.Descriptor) string {
	return src.AssetFileName + "." + s.extension
}

// CopyAssetFile copies the capture behind src into the project's Assets
// directory, replacing a file of the same name. The copy lands under a hidden
// partial name and is renamed into place, so a failed copy leaves the existing
// asset untouched. It returns the copied file name.
func (s *Store) CopyAssetFile(src asset.Descriptor, p *project.Project) (string, error) {
	assetsDir := p.AssetsDir()
	if assetsDir == "" {
		return "", repository.ErrInvalidPath
	}

	srcPath, ok := src.ResolvedPath()
	if !ok {
		return "", fmt.Errorf("%w: %s", repository.ErrSourceNotFound, src.AssetFileName)
	}

	name := s.AssetFileName(src)
	dst := filepath.Join(assetsDir, name)
	tmp := filepath.Join(assetsDir, "."+name+partialSuffix)
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: remove stale partial copy: %w", repository.ErrIO, err)
	}
	if err := copyFile(srcPath, tmp); err != nil {
		return "", fmt.Errorf("%w: copy asset: %w", repository.ErrIO, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: replace asset: %w", repository.ErrIO, err)
	}

	s.logger.Info("copied capture into project", "source", srcPath, "destination", dst)
	return name, nil
}

// ClearAssets removes everything inside the project's Assets directory except
// the entries named in keep, leaving the directory itself in place.
func (s *Store) ClearAssets(p *project.Project, keep ...string) error {
	assetsDir := p.AssetsDir()
	if assetsDir == "" {
		return repository.ErrInvalidPath
	}
	entries, err := os.ReadDir(assetsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.MkdirAll(assetsDir, 0o755)
		}
		return fmt.Errorf("%w: list assets: %w", repository.ErrIO, err)
	}
	for _, entry := range entries {
		if slices.Contains(keep, entry.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(assetsDir, entry.Name())); err != nil {
			return fmt.Errorf("%w: remove asset %s: %w", repository.ErrIO, entry.Name(), err)
		}
	}
	return nil
}

// HasAsset reports whether the project holds a copied capture.
func (s *Store) HasAsset(p *project.Project) bool {
	return project.HasAsset(p.AssetsDir(), s.extension)
}

// SaveThumbnail writes thumbnail.png.
func (s *Store) SaveThumbnail(data []byte, p *project.Project) error {
	path := p.ThumbnailPath()
	if path == "" {
		return repository.ErrInvalidPath
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write thumbnail: %w", repository.ErrIO, err)
	}
	return nil
}

// LoadThumbnail reads thumbnail.png. A missing thumbnail yields nil, nil.
func (s *Store) LoadThumbnail(p *project.Project) ([]byte, error) {
	path := p.ThumbnailPath()
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read thumbnail: %w", repository.ErrIO, err)
	}
	return data, nil
}

// DeleteProjectDirectory removes the project directory recursively. A missing
// directory is not an error.
func (s *Store) DeleteProjectDirectory(p *project.Project) error {
	dir := p.Dir()
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: delete project directory: %w", repository.ErrIO, err)
	}
	s.logger.Info("deleted project directory", "path", dir)
	return nil
}

// DirectorySize sums the size of every regular file under the root.
func (s *Store) DirectorySize() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.root {
				return fs.SkipAll
			}
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: measure projects directory: %w", repository.ErrIO, err)
	}
	return total, nil
}

// FileCount counts all entries below the project directory.
func (s *Store) FileCount(p *project.Project) int {
	dir := p.Dir()
	if dir == "" {
		return 0
	}
	count := 0
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && path != dir {
			count++
		}
		return nil
	})
	return count
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

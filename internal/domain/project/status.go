package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ganot/roomstage/internal/domain/asset"
)

// Status is the display state of a project, derived on demand.
type Status string

const (
	StatusAssetReady            Status = "asset_ready"
	StatusRoomSelectedNotCopied Status = "room_selected_not_copied"
	StatusNoRoom                Status = "no_room"
)

// ClassifyStatus applies the status rules: a copied asset wins, then a
// resolvable room reference, else no room.
func ClassifyStatus(assetPresent, roomResolves bool) Status {
	switch {
	case assetPresent:
		return StatusAssetReady
	case roomResolves:
		return StatusRoomSelectedNotCopied
	default:
		return StatusNoRoom
	}
}

// DeriveStatus classifies p against a room catalog snapshot. It reads the
// project's assets directory.
func DeriveStatus(p *Project, rooms []asset.Descriptor, ext string) Status {
	return ClassifyStatus(HasAsset(p.AssetsDir(), ext), ResolveRoom(p, rooms) != nil)
}

// ResolveRoom looks up the project's selected room in a catalog snapshot.
// A stale reference resolves to nil.
func ResolveRoom(p *Project, rooms []asset.Descriptor) *asset.Descriptor {
	id := p.RoomID()
	if id == "" {
		return nil
	}
	for i := range rooms {
		if rooms[i].ID == id {
			return &rooms[i]
		}
	}
	return nil
}

// HasAsset reports whether dir holds at least one regular file with the
// given extension (case-insensitive).
func HasAsset(dir, ext string) bool {
	if dir == "" {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	ext = strings.TrimPrefix(ext, ".")
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(strings.TrimPrefix(filepath.Ext(entry.Name()), "."), ext) {
			return true
		}
	}
	return false
}

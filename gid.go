package tmxparser

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// ResolveTileset maps a raw tile value to its owning tileset reference.
// Flip bits are ignored. The range table is sorted by ascending first gid;
// entry i owns every gid below entry i+1's first gid, and the last entry
// absorbs everything at or above its own. GID 0 means "no tile" and never
// matches.
func (m *Map) ResolveTileset(gid uint32) (*TilesetRef, bool) {
	bare := gid &^ GIDFlipMask
	if bare == 0 || len(m.Tilesets) == 0 || bare < m.Tilesets[0].FirstGID {
		return nil, false
	}
	for i, ref := range m.Tilesets {
		if i == len(m.Tilesets)-1 || bare < m.Tilesets[i+1].FirstGID {
			return ref, true
		}
	}
	return nil, false
}

// SourceRect returns the pixel rectangle of a tile within its tileset's
// image. Tiles are laid out row-major across the declared column count;
// an index at or past the tile count has no rectangle.
func SourceRect(ts *Tileset, localIndex int) (image.Rectangle, bool) {
	if ts.Columns <= 0 || localIndex < 0 || localIndex >= ts.TileCount {
		return image.Rectangle{}, false
	}
	col := localIndex % ts.Columns
	row := localIndex / ts.Columns
	x := col * ts.TileWidth
	y := row * ts.TileHeight
	return image.Rect(x, y, x+ts.TileWidth, y+ts.TileHeight), true
}

// SourceRect resolves a gid to its tileset and the pixel rectangle of the
// tile inside that tileset's image. External tilesets must have been
// resolved first.
func (m *Map) SourceRect(gid uint32) (image.Rectangle, *TilesetRef, bool) {
	ref, ok := m.ResolveTileset(gid)
	if !ok || ref.Tileset == nil {
		return image.Rectangle{}, nil, false
	}
	local := int((gid &^ GIDFlipMask) - ref.FirstGID)
	rect, ok := SourceRect(ref.Tileset, local)
	if !ok {
		return image.Rectangle{}, nil, false
	}
	return rect, ref, true
}

// LoadExternalTilesets resolves every unresolved external tileset reference
// against baseDir. Each file is read in a single shot; a missing file is a
// named, fatal error.
func (m *Map) LoadExternalTilesets(baseDir string) error {
	for _, ref := range m.Tilesets {
		if ref.Embedded() || ref.Tileset != nil {
			continue
		}
		path := filepath.Join(baseDir, ref.Source)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s: %w", path, ErrExternalTilesetNotFound)
			}
			return fmt.Errorf("read external tileset %s: %w", path, err)
		}
		ts, err := ParseTileset(data)
		if err != nil {
			return fmt.Errorf("external tileset %s: %w", path, err)
		}
		ref.Tileset = ts
	}
	return nil
}

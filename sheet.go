package tmxparser

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sheet holds a tileset's image cut into per-tile sub-images, indexed by
// local tile id. It is a convenience for consumers that draw with ebiten;
// the engine itself never draws.
type Sheet struct {
	TileWidth  int
	TileHeight int
	Tiles      []*ebiten.Image
}

// NewSheet slices an already-decoded tileset image into tiles.
func NewSheet(ts *Tileset, src image.Image) *Sheet {
	img := ebiten.NewImageFromImage(src)
	s := &Sheet{TileWidth: ts.TileWidth, TileHeight: ts.TileHeight}
	for i := 0; i < ts.TileCount; i++ {
		rect, ok := SourceRect(ts, i)
		if !ok {
			break
		}
		s.Tiles = append(s.Tiles, img.SubImage(rect).(*ebiten.Image))
	}
	return s
}

// LoadSheet decodes the tileset's image file relative to baseDir and
// slices it into tiles.
func LoadSheet(ts *Tileset, baseDir string) (*Sheet, error) {
	if ts.Image == nil {
		return nil, fmt.Errorf("tileset %q has no image", ts.Name)
	}
	f, err := os.Open(filepath.Join(baseDir, ts.Image.Source))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode tileset image %s: %w", ts.Image.Source, err)
	}
	return NewSheet(ts, src), nil
}

// Tile returns the sub-image for a local tile id, or nil when out of range.
func (s *Sheet) Tile(localID int) *ebiten.Image {
	if localID < 0 || localID >= len(s.Tiles) {
		return nil
	}
	return s.Tiles[localID]
}

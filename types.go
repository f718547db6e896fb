package tmxparser

import (
	"image/color"
	"strconv"
)

// Bitmasks for the flip state packed into the top bits of a raw tile value.
const (
	GIDFlippedHorizontally uint32 = 0x80000000
	GIDFlippedVertically   uint32 = 0x40000000
	GIDFlippedDiagonally   uint32 = 0x20000000
	GIDFlipMask                   = GIDFlippedHorizontally | GIDFlippedVertically | GIDFlippedDiagonally
)

// Flip flags after the raw masks are shifted down into the low 3 bits of a
// byte. Only meaningful for non-zero GIDs.
const (
	FlagFlippedHorizontally uint8 = 0x4
	FlagFlippedVertically   uint8 = 0x2
	FlagFlippedDiagonally   uint8 = 0x1
)

// Vec2 represents a 2D coordinate or offset in pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is a vertex of a polygon or polyline, relative to its object.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PropertyType tags the value of a custom property.
type PropertyType string

const (
	PropString PropertyType = "string"
	PropBool   PropertyType = "bool"
	PropColor  PropertyType = "color"
	PropFile   PropertyType = "file"
	PropFloat  PropertyType = "float"
	PropInt    PropertyType = "int"
	PropObject PropertyType = "object"
)

// Property is a single custom property. The value is kept as the raw text
// plus its declared type; conversion is up to the consumer.
type Property struct {
	Name  string       `json:"name"`
	Type  PropertyType `json:"type"`
	Value string       `json:"value"`
}

// Properties is an ordered custom property list.
type Properties []Property

// Get returns the raw value of the named property.
func (p Properties) Get(name string) (string, bool) {
	for i := range p {
		if p[i].Name == name {
			return p[i].Value, true
		}
	}
	return "", false
}

// GetBool returns the named property as a bool. Tiled writes "true" and
// "false"; "1" and "0" are accepted too. The second result is false when
// the property is absent or does not parse.
func (p Properties) GetBool(name string) (bool, bool) {
	raw, ok := p.Get(name)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// GetInt returns the named property as an int.
func (p Properties) GetInt(name string) (int, bool) {
	raw, ok := p.Get(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetFloat returns the named property as a float64.
func (p Properties) GetFloat(name string) (float64, bool) {
	raw, ok := p.Get(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ImageRef references an image file together with its declared pixel size.
type ImageRef struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Frame is a single step of a tile animation.
type Frame struct {
	TileID     int `json:"tile_id"`
	DurationMS int `json:"duration_ms"`
}

// TileDef carries the extra data attached to a single tile of a tileset.
// Only tiles that declare properties, animation, terrain or collision data
// get a TileDef; plain tiles are implied by the tileset's tile count.
type TileDef struct {
	ID          int        `json:"id"`
	Class       string     `json:"class,omitempty"`
	Probability float64    `json:"probability,omitempty"`
	Properties  Properties `json:"properties,omitempty"`
	Animation   []Frame    `json:"animation,omitempty"`
	Collision   []*Object  `json:"collision,omitempty"`
	Image       *ImageRef  `json:"image,omitempty"`
}

// WangType classifies how a wang set matches terrain.
type WangType string

const (
	WangCorner WangType = "corner"
	WangEdge   WangType = "edge"
	WangMixed  WangType = "mixed"
)

// WangColor is one terrain color of a wang set.
type WangColor struct {
	Name        string     `json:"name"`
	Class       string     `json:"class,omitempty"`
	Color       string     `json:"color"`
	TileID      int        `json:"tile_id"`
	Probability float64    `json:"probability,omitempty"`
	Properties  Properties `json:"properties,omitempty"`
}

// WangTile maps a tile to its 8-direction adjacency codes, in the order
// top, top-right, right, bottom-right, bottom, bottom-left, left, top-left.
// Each entry is an index into the wang set's color list, or -1 when unset.
type WangTile struct {
	TileID    int    `json:"tile_id"`
	Adjacency [8]int `json:"adjacency"`
}

// WangSet is a named terrain set of a tileset.
type WangSet struct {
	Name       string      `json:"name"`
	Class      string      `json:"class,omitempty"`
	Type       WangType    `json:"type"`
	TileID     int         `json:"tile_id"`
	Colors     []WangColor `json:"colors,omitempty"`
	Tiles      []WangTile  `json:"tiles,omitempty"`
	Properties Properties  `json:"properties,omitempty"`
}

// Tileset is a parsed tileset, either embedded in a map or loaded from a
// standalone TSX document.
type Tileset struct {
	Version      string     `json:"version,omitempty"`
	TiledVersion string     `json:"tiled_version,omitempty"`
	Name         string     `json:"name"`
	Class        string     `json:"class,omitempty"`
	TileWidth    int        `json:"tile_width"`
	TileHeight   int        `json:"tile_height"`
	TileCount    int        `json:"tile_count"`
	Columns      int        `json:"columns"`
	Spacing      int        `json:"spacing,omitempty"`
	Margin       int        `json:"margin,omitempty"`
	TileOffset   Vec2       `json:"tile_offset,omitempty"`
	Image        *ImageRef  `json:"image,omitempty"`
	Tiles        []*TileDef `json:"tiles,omitempty"`
	WangSets     []*WangSet `json:"wang_sets,omitempty"`
	Properties   Properties `json:"properties,omitempty"`
}

// Tile returns the sparse TileDef for a local tile id, if one exists.
func (t *Tileset) Tile(id int) (*TileDef, bool) {
	for _, td := range t.Tiles {
		if td.ID == id {
			return td, true
		}
	}
	return nil, false
}

// TilesetRef points from a map into one of its tilesets. Embedded tilesets
// are parsed in place and owned by the map; external ones keep their source
// path and a nil Tileset until resolved.
type TilesetRef struct {
	FirstGID uint32   `json:"first_gid"`
	Source   string   `json:"source,omitempty"`
	Tileset  *Tileset `json:"tileset,omitempty"`
}

// Embedded reports whether the reference was parsed in place rather than
// pointing at an external TSX file.
func (r *TilesetRef) Embedded() bool {
	return r.Source == ""
}

// LayerKind discriminates the layer variants.
type LayerKind string

const (
	LayerTile   LayerKind = "tile"
	LayerObject LayerKind = "object"
	LayerImage  LayerKind = "image"
	LayerGroup  LayerKind = "group"
)

// Chunk is a rectangular block of tile data used by infinite maps. Position
// and size are in tile units.
type Chunk struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	GIDs   []uint32 `json:"gids"`
	Flags  []uint8  `json:"flags"`
}

// Layer is one layer of a map. Kind selects which of the payload field
// groups is populated; the common fields apply to every kind. A tile layer
// carries either the flat GIDs/Flags pair (finite maps) or Chunks (infinite
// maps), never both.
type Layer struct {
	Kind       LayerKind   `json:"kind"`
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Class      string      `json:"class,omitempty"`
	Visible    bool        `json:"visible"`
	Locked     bool        `json:"locked,omitempty"`
	Offset     Vec2        `json:"offset,omitempty"`
	Parallax   Vec2        `json:"parallax"`
	Opacity    float64     `json:"opacity"`
	TintColor  *color.RGBA `json:"tint_color,omitempty"`
	Properties Properties  `json:"properties,omitempty"`

	// tile layers
	Width  int      `json:"width,omitempty"`
	Height int      `json:"height,omitempty"`
	GIDs   []uint32 `json:"gids,omitempty"`
	Flags  []uint8  `json:"flags,omitempty"`
	Chunks []Chunk  `json:"chunks,omitempty"`

	// object layers
	Color     *color.RGBA `json:"color,omitempty"`
	DrawOrder string      `json:"draw_order,omitempty"`
	Objects   []*Object   `json:"objects,omitempty"`

	// image layers
	Image   *ImageRef `json:"image,omitempty"`
	RepeatX bool      `json:"repeat_x,omitempty"`
	RepeatY bool      `json:"repeat_y,omitempty"`

	// groups
	Layers []*Layer `json:"layers,omitempty"`
}

// ObjectShape discriminates the object variants.
type ObjectShape string

const (
	ShapeRectangle ObjectShape = "rectangle"
	ShapePoint     ObjectShape = "point"
	ShapeEllipse   ObjectShape = "ellipse"
	ShapePolygon   ObjectShape = "polygon"
	ShapePolyline  ObjectShape = "polyline"
	ShapeTile      ObjectShape = "tile"
)

// Object is a single placed object of an object layer or a tile's collision
// group. Shape selects the variant; Points is set for polygons and
// polylines, GID and Flags for tile objects.
type Object struct {
	ID         int         `json:"id"`
	Name       string      `json:"name,omitempty"`
	Class      string      `json:"class,omitempty"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width,omitempty"`
	Height     float64     `json:"height,omitempty"`
	Rotation   float64     `json:"rotation,omitempty"`
	Visible    bool        `json:"visible"`
	Shape      ObjectShape `json:"shape"`
	Points     []Point     `json:"points,omitempty"`
	GID        uint32      `json:"gid,omitempty"`
	Flags      uint8       `json:"flags,omitempty"`
	Properties Properties  `json:"properties,omitempty"`
}

// Map is the parsed top-level document. It owns every tileset, layer and
// object beneath it; the engine keeps no reference to a returned Map, and
// callers must treat it as read-only.
type Map struct {
	Version         string        `json:"version,omitempty"`
	TiledVersion    string        `json:"tiled_version,omitempty"`
	Class           string        `json:"class,omitempty"`
	Orientation     string        `json:"orientation"`
	RenderOrder     string        `json:"render_order,omitempty"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	TileWidth       int           `json:"tile_width"`
	TileHeight      int           `json:"tile_height"`
	Infinite        bool          `json:"infinite,omitempty"`
	BackgroundColor *color.RGBA   `json:"background_color,omitempty"`
	ParallaxOrigin  Vec2          `json:"parallax_origin,omitempty"`
	Tilesets        []*TilesetRef `json:"tilesets"`
	Layers          []*Layer      `json:"layers"`
	Properties      Properties    `json:"properties,omitempty"`
}

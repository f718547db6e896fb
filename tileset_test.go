package tmxparser

import (
	"errors"
	"strings"
	"testing"
)

const groundTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" tiledversion="1.10.2" name="ground" tilewidth="16" tileheight="16" tilecount="64" columns="8" spacing="0" margin="0">
 <tileoffset x="0" y="-8"/>
 <image source="ground.png" width="128" height="128"/>
 <properties>
  <property name="biome" value="forest"/>
 </properties>
 <tile id="3" class="water" probability="0.5">
  <properties>
   <property name="swim" type="bool" value="1"/>
  </properties>
  <animation>
   <frame tileid="3" duration="150"/>
   <frame tileid="4" duration="150"/>
  </animation>
 </tile>
 <tile id="12">
  <objectgroup id="2">
   <object id="1" x="0" y="8" width="16" height="8"/>
  </objectgroup>
 </tile>
 <wangsets>
  <wangset name="cliffs" type="corner" tile="-1">
   <wangcolor name="grass" color="#00ff00" tile="-1" probability="1"/>
   <wangcolor name="rock" color="#808080" tile="-1" probability="1"/>
   <wangtile tileid="0" wangid="1,0,2,0,1,0,2,0"/>
  </wangset>
 </wangsets>
</tileset>
`

func TestParseTileset(t *testing.T) {
	ts, err := ParseTileset([]byte(groundTSX))
	if err != nil {
		t.Fatalf("ParseTileset: %v", err)
	}

	if ts.Name != "ground" || ts.TileWidth != 16 || ts.TileHeight != 16 || ts.TileCount != 64 || ts.Columns != 8 {
		t.Errorf("tileset header = %+v", ts)
	}
	if ts.Version != "1.10" || ts.TiledVersion != "1.10.2" {
		t.Errorf("version strings = %q, %q", ts.Version, ts.TiledVersion)
	}
	if ts.TileOffset.Y != -8 {
		t.Errorf("tile offset = %+v", ts.TileOffset)
	}
	if ts.Image == nil || ts.Image.Source != "ground.png" || ts.Image.Width != 128 {
		t.Errorf("image = %+v", ts.Image)
	}
	if v, ok := ts.Properties.Get("biome"); !ok || v != "forest" {
		t.Errorf("biome property = %q, %v", v, ok)
	}

	if len(ts.Tiles) != 2 {
		t.Fatalf("want 2 sparse tile defs, got %d", len(ts.Tiles))
	}
	water, ok := ts.Tile(3)
	if !ok {
		t.Fatal("tile 3 missing")
	}
	if water.Class != "water" || water.Probability != 0.5 {
		t.Errorf("tile 3 = %+v", water)
	}
	if len(water.Animation) != 2 || water.Animation[1] != (Frame{TileID: 4, DurationMS: 150}) {
		t.Errorf("tile 3 animation = %+v", water.Animation)
	}
	if v, ok := water.Properties.Get("swim"); !ok || v != "1" {
		t.Errorf("tile 3 swim property = %q, %v", v, ok)
	}

	solid, ok := ts.Tile(12)
	if !ok || len(solid.Collision) != 1 {
		t.Fatalf("tile 12 collision = %+v", solid)
	}
	if c := solid.Collision[0]; c.Shape != ShapeRectangle || c.Y != 8 || c.Height != 8 {
		t.Errorf("tile 12 collision object = %+v", c)
	}

	if len(ts.WangSets) != 1 {
		t.Fatalf("want 1 wang set, got %d", len(ts.WangSets))
	}
	ws := ts.WangSets[0]
	if ws.Name != "cliffs" || ws.Type != WangCorner || len(ws.Colors) != 2 {
		t.Errorf("wang set = %+v", ws)
	}
	if len(ws.Tiles) != 1 {
		t.Fatalf("want 1 wang tile, got %d", len(ws.Tiles))
	}
	// Document entries are 1-based with 0 meaning unset; the model keeps
	// 0-based color indexes with -1 for unset.
	want := [8]int{0, -1, 1, -1, 0, -1, 1, -1}
	if ws.Tiles[0].Adjacency != want {
		t.Errorf("wang tile adjacency = %v, want %v", ws.Tiles[0].Adjacency, want)
	}
}

func TestPropertiesTypedAccessors(t *testing.T) {
	props := Properties{
		{Name: "swim", Type: PropBool, Value: "true"},
		{Name: "locked", Type: PropBool, Value: "0"},
		{Name: "depth", Type: PropInt, Value: "3"},
		{Name: "rate", Type: PropFloat, Value: "0.25"},
		{Name: "label", Type: PropString, Value: "cliff"},
	}

	if v, ok := props.GetBool("swim"); !ok || !v {
		t.Errorf("GetBool(swim) = %v, %v", v, ok)
	}
	if v, ok := props.GetBool("locked"); !ok || v {
		t.Errorf("GetBool(locked) = %v, %v", v, ok)
	}
	if v, ok := props.GetInt("depth"); !ok || v != 3 {
		t.Errorf("GetInt(depth) = %v, %v", v, ok)
	}
	if v, ok := props.GetFloat("rate"); !ok || v != 0.25 {
		t.Errorf("GetFloat(rate) = %v, %v", v, ok)
	}

	// Absent names and non-parsing values both come back not-ok.
	if _, ok := props.GetInt("missing"); ok {
		t.Error("GetInt matched an absent property")
	}
	if _, ok := props.GetFloat("label"); ok {
		t.Error("GetFloat parsed a non-numeric value")
	}
	if _, ok := props.GetBool("label"); ok {
		t.Error("GetBool parsed a non-boolean value")
	}
}

func TestParseTilesetErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			"missing tile count",
			`<tileset name="x" tilewidth="16" tileheight="16" columns="8"/>`,
			ErrMissingAttribute,
		},
		{
			"missing columns",
			`<tileset name="x" tilewidth="16" tileheight="16" tilecount="8"/>`,
			ErrMissingAttribute,
		},
		{
			"unknown wang set type",
			`<tileset name="x" tilewidth="16" tileheight="16" tilecount="8" columns="8">
			  <wangsets><wangset name="w" type="diagonal"/></wangsets>
			 </tileset>`,
			ErrUnknownElement,
		},
		{
			"wrong root tag",
			`<spritesheet name="x"/>`,
			ErrUnsupportedFormat,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTileset([]byte(tc.doc))
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseWangTileCountValidated(t *testing.T) {
	doc := `<tileset name="x" tilewidth="16" tileheight="16" tilecount="8" columns="8">
	  <wangsets>
	   <wangset name="w" type="edge">
	    <wangtile tileid="0" wangid="1,0,2,0,1,0,2"/>
	   </wangset>
	  </wangsets>
	 </tileset>`

	_, err := ParseTileset([]byte(doc))
	if err == nil {
		t.Fatal("7-entry wang id parsed without error")
	}
	if !strings.Contains(err.Error(), "want 8") {
		t.Errorf("error %q does not name the expected entry count", err)
	}
}

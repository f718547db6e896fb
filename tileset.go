package tmxparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// parseTileset parses a <tileset> element, either the root of a standalone
// TSX document or a node embedded inside a map.
func (p *parser) parseTileset(el *etree.Element) (*Tileset, error) {
	ts := &Tileset{}

	var err error
	if ts.TileWidth, err = requireIntAttr(el, "tilewidth"); err != nil {
		return nil, err
	}
	if ts.TileHeight, err = requireIntAttr(el, "tileheight"); err != nil {
		return nil, err
	}
	if ts.TileCount, err = requireIntAttr(el, "tilecount"); err != nil {
		return nil, err
	}
	if ts.Columns, err = requireIntAttr(el, "columns"); err != nil {
		return nil, err
	}
	ts.Name, _ = attr(el, "name")
	ts.Class = classAttr(el)
	ts.Version, _ = attr(el, "version")
	ts.TiledVersion, _ = attr(el, "tiledversion")
	if ts.Spacing, err = intAttr(el, "spacing", 0); err != nil {
		return nil, err
	}
	if ts.Margin, err = intAttr(el, "margin", 0); err != nil {
		return nil, err
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "image":
			img, err := p.parseImageRef(child)
			if err != nil {
				return nil, err
			}
			ts.Image = img
		case "tileoffset":
			if ts.TileOffset.X, err = floatAttr(child, "x", 0); err != nil {
				return nil, err
			}
			if ts.TileOffset.Y, err = floatAttr(child, "y", 0); err != nil {
				return nil, err
			}
		case "properties":
			props, err := p.parseProperties(child)
			if err != nil {
				return nil, err
			}
			ts.Properties = props
		case "tile":
			td, err := p.parseTileDef(child)
			if err != nil {
				return nil, err
			}
			ts.Tiles = append(ts.Tiles, td)
		case "wangsets":
			for _, ws := range child.ChildElements() {
				if ws.Tag != "wangset" {
					p.log.Warn("Unexpected tag in wangsets, ignoring", zap.String("tag", ws.Tag))
					continue
				}
				set, err := p.parseWangSet(ws)
				if err != nil {
					return nil, err
				}
				ts.WangSets = append(ts.WangSets, set)
			}
		default:
			p.log.Warn("Unexpected tag in tileset, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}

	return ts, nil
}

func (p *parser) parseImageRef(el *etree.Element) (*ImageRef, error) {
	src, err := requireAttr(el, "source")
	if err != nil {
		return nil, err
	}
	img := &ImageRef{Source: src}
	if img.Width, err = intAttr(el, "width", 0); err != nil {
		return nil, err
	}
	if img.Height, err = intAttr(el, "height", 0); err != nil {
		return nil, err
	}
	return img, nil
}

func (p *parser) parseTileDef(el *etree.Element) (*TileDef, error) {
	td := &TileDef{}

	var err error
	if td.ID, err = requireIntAttr(el, "id"); err != nil {
		return nil, err
	}
	td.Class = classAttr(el)
	if td.Probability, err = floatAttr(el, "probability", 0); err != nil {
		return nil, err
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "properties":
			props, err := p.parseProperties(child)
			if err != nil {
				return nil, err
			}
			td.Properties = props
		case "animation":
			for _, fr := range child.ChildElements() {
				if fr.Tag != "frame" {
					p.log.Warn("Unexpected tag in animation, ignoring", zap.String("tag", fr.Tag))
					continue
				}
				tileID, err := requireIntAttr(fr, "tileid")
				if err != nil {
					return nil, err
				}
				dur, err := requireIntAttr(fr, "duration")
				if err != nil {
					return nil, err
				}
				td.Animation = append(td.Animation, Frame{TileID: tileID, DurationMS: dur})
			}
		case "objectgroup":
			for _, ob := range child.ChildElements() {
				if ob.Tag != "object" {
					continue
				}
				o, err := p.parseObject(ob)
				if err != nil {
					return nil, err
				}
				td.Collision = append(td.Collision, o)
			}
		case "image":
			img, err := p.parseImageRef(child)
			if err != nil {
				return nil, err
			}
			td.Image = img
		default:
			p.log.Warn("Unexpected tag in tile, ignoring", zap.String("tag", child.Tag))
		}
	}

	return td, nil
}

func (p *parser) parseWangSet(el *etree.Element) (*WangSet, error) {
	ws := &WangSet{}
	ws.Name, _ = attr(el, "name")
	ws.Class = classAttr(el)

	typ, err := requireAttr(el, "type")
	if err != nil {
		return nil, err
	}
	switch WangType(typ) {
	case WangCorner, WangEdge, WangMixed:
		ws.Type = WangType(typ)
	default:
		return nil, fmt.Errorf("wang set %q type %q: %w", ws.Name, typ, ErrUnknownElement)
	}
	if ws.TileID, err = intAttr(el, "tile", -1); err != nil {
		return nil, err
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "wangcolor":
			wc := WangColor{}
			wc.Name, _ = attr(child, "name")
			wc.Class = classAttr(child)
			wc.Color, _ = attr(child, "color")
			if wc.TileID, err = intAttr(child, "tile", -1); err != nil {
				return nil, err
			}
			if wc.Probability, err = floatAttr(child, "probability", 0); err != nil {
				return nil, err
			}
			if props := child.SelectElement("properties"); props != nil {
				if wc.Properties, err = p.parseProperties(props); err != nil {
					return nil, err
				}
			}
			ws.Colors = append(ws.Colors, wc)
		case "wangtile":
			wt, err := p.parseWangTile(child)
			if err != nil {
				return nil, fmt.Errorf("wang set %q: %w", ws.Name, err)
			}
			ws.Tiles = append(ws.Tiles, wt)
		case "properties":
			if ws.Properties, err = p.parseProperties(child); err != nil {
				return nil, err
			}
		default:
			p.log.Warn("Unexpected tag in wangset, ignoring", zap.String("tag", child.Tag))
		}
	}

	return ws, nil
}

// parseWangTile parses a wang id of exactly 8 adjacency codes in the order
// top, top-right, right, bottom-right, bottom, bottom-left, left, top-left.
// The document stores 0 for unset and 1-based color indexes; the model
// keeps 0-based indexes with -1 for unset.
func (p *parser) parseWangTile(el *etree.Element) (WangTile, error) {
	wt := WangTile{}

	var err error
	if wt.TileID, err = requireIntAttr(el, "tileid"); err != nil {
		return wt, err
	}
	raw, err := requireAttr(el, "wangid")
	if err != nil {
		return wt, err
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 8 {
		return wt, fmt.Errorf("wangtile %d: wang id %q has %d entries, want 8", wt.TileID, raw, len(parts))
	}
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return wt, fmt.Errorf("wangtile %d: wang id %q: %w", wt.TileID, raw, err)
		}
		if v <= 0 {
			wt.Adjacency[i] = -1
		} else {
			wt.Adjacency[i] = v - 1
		}
	}

	return wt, nil
}

func (p *parser) parseProperties(el *etree.Element) (Properties, error) {
	var props Properties
	for _, child := range el.ChildElements() {
		if child.Tag != "property" {
			p.log.Warn("Unexpected tag in properties, ignoring", zap.String("tag", child.Tag))
			continue
		}
		name, err := requireAttr(child, "name")
		if err != nil {
			return nil, err
		}
		prop := Property{Name: name, Type: PropString}
		if t, ok := attr(child, "type"); ok {
			prop.Type = PropertyType(t)
		}
		if v, ok := attr(child, "value"); ok {
			prop.Value = v
		} else {
			// Multiline string properties keep their value as inner text.
			prop.Value = child.Text()
		}
		props = append(props, prop)
	}
	return props, nil
}

// classAttr reads the user class of an element. Documents before 1.9 write
// it as "type"; both spellings are accepted.
func classAttr(el *etree.Element) string {
	if v, ok := attr(el, "class"); ok {
		return v
	}
	v, _ := attr(el, "type")
	return v
}

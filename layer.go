package tmxparser

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// parseLayers walks the children of a map or group node and dispatches them
// by tag. It preserves document order and recurses through groups with no
// depth limit. Tags owned by the caller (tilesets, properties, editor
// settings) are skipped; anything else is fatal. A non-nil onGroup hook
// fires before each group at this level, not inside the recursion.
func (p *parser) parseLayers(el *etree.Element, infinite bool, onGroup func()) ([]*Layer, error) {
	var layers []*Layer
	for _, child := range el.ChildElements() {
		var (
			l   *Layer
			err error
		)
		switch child.Tag {
		case "layer":
			l, err = p.parseTileLayer(child, infinite)
		case "objectgroup":
			l, err = p.parseObjectLayer(child)
		case "imagelayer":
			l, err = p.parseImageLayer(child)
		case "group":
			if onGroup != nil {
				onGroup()
			}
			l, err = p.parseGroup(child, infinite)
		case "tileset", "properties":
			continue
		case "editorsettings":
			p.log.Warn("Unexpected tag, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
			continue
		default:
			return nil, fmt.Errorf("<%s> in <%s>: %w", child.Tag, el.Tag, ErrUnknownElement)
		}
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// layerCommon fills the fields shared by every layer kind. Defaults:
// visible, opacity 1, parallax (1, 1).
func (p *parser) layerCommon(el *etree.Element, l *Layer) error {
	var err error
	if l.ID, err = intAttr(el, "id", 0); err != nil {
		return err
	}
	l.Name, _ = attr(el, "name")
	l.Class = classAttr(el)
	if l.Visible, err = boolAttr(el, "visible", true); err != nil {
		return err
	}
	if l.Locked, err = boolAttr(el, "locked", false); err != nil {
		return err
	}
	if l.Offset.X, err = floatAttr(el, "offsetx", 0); err != nil {
		return err
	}
	if l.Offset.Y, err = floatAttr(el, "offsety", 0); err != nil {
		return err
	}
	if l.Parallax.X, err = floatAttr(el, "parallaxx", 1); err != nil {
		return err
	}
	if l.Parallax.Y, err = floatAttr(el, "parallaxy", 1); err != nil {
		return err
	}
	if l.Opacity, err = floatAttr(el, "opacity", 1); err != nil {
		return err
	}
	if l.TintColor, err = colorAttr(el, "tintcolor"); err != nil {
		return err
	}
	if props := el.SelectElement("properties"); props != nil {
		if l.Properties, err = p.parseProperties(props); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseTileLayer(el *etree.Element, infinite bool) (*Layer, error) {
	l := &Layer{Kind: LayerTile}
	if err := p.layerCommon(el, l); err != nil {
		return nil, err
	}

	var err error
	if l.Width, err = requireIntAttr(el, "width"); err != nil {
		return nil, err
	}
	if l.Height, err = requireIntAttr(el, "height"); err != nil {
		return nil, err
	}

	data := el.SelectElement("data")
	if data == nil {
		return nil, fmt.Errorf("layer %q: missing <data>: %w", l.Name, ErrInvalidTileData)
	}
	encoding, _ := attr(data, "encoding")
	compression, _ := attr(data, "compression")

	if infinite {
		for _, ch := range data.ChildElements() {
			if ch.Tag != "chunk" {
				p.log.Warn("Unexpected tag in data, ignoring", zap.String("tag", ch.Tag))
				continue
			}
			chunk, err := p.parseChunk(ch, encoding, compression)
			if err != nil {
				return nil, fmt.Errorf("layer %q: %w", l.Name, err)
			}
			l.Chunks = append(l.Chunks, chunk)
		}
		return l, nil
	}

	gids, flags, err := decodeTileData(encoding, compression, data.Text())
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", l.Name, err)
	}
	if len(gids) != l.Width*l.Height {
		return nil, fmt.Errorf("layer %q: %d tiles for a %dx%d layer: %w", l.Name, len(gids), l.Width, l.Height, ErrInvalidTileData)
	}
	l.GIDs, l.Flags = gids, flags
	return l, nil
}

func (p *parser) parseChunk(el *etree.Element, encoding, compression string) (Chunk, error) {
	c := Chunk{}

	var err error
	if c.X, err = requireIntAttr(el, "x"); err != nil {
		return c, err
	}
	if c.Y, err = requireIntAttr(el, "y"); err != nil {
		return c, err
	}
	if c.Width, err = requireIntAttr(el, "width"); err != nil {
		return c, err
	}
	if c.Height, err = requireIntAttr(el, "height"); err != nil {
		return c, err
	}

	c.GIDs, c.Flags, err = decodeTileData(encoding, compression, el.Text())
	if err != nil {
		return c, err
	}
	if len(c.GIDs) != c.Width*c.Height {
		return c, fmt.Errorf("chunk (%d,%d): %d tiles for a %dx%d chunk: %w", c.X, c.Y, len(c.GIDs), c.Width, c.Height, ErrInvalidTileData)
	}
	return c, nil
}

func (p *parser) parseObjectLayer(el *etree.Element) (*Layer, error) {
	l := &Layer{Kind: LayerObject}
	if err := p.layerCommon(el, l); err != nil {
		return nil, err
	}

	var err error
	if l.Color, err = colorAttr(el, "color"); err != nil {
		return nil, err
	}
	l.DrawOrder, _ = attr(el, "draworder")

	for _, child := range el.ChildElements() {
		if child.Tag != "object" {
			if child.Tag != "properties" {
				p.log.Warn("Unexpected tag in objectgroup, ignoring", zap.String("tag", child.Tag))
			}
			continue
		}
		o, err := p.parseObject(child)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		l.Objects = append(l.Objects, o)
	}
	return l, nil
}

func (p *parser) parseImageLayer(el *etree.Element) (*Layer, error) {
	l := &Layer{Kind: LayerImage}
	if err := p.layerCommon(el, l); err != nil {
		return nil, err
	}

	var err error
	if l.RepeatX, err = boolAttr(el, "repeatx", false); err != nil {
		return nil, err
	}
	if l.RepeatY, err = boolAttr(el, "repeaty", false); err != nil {
		return nil, err
	}
	if img := el.SelectElement("image"); img != nil {
		if l.Image, err = p.parseImageRef(img); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *parser) parseGroup(el *etree.Element, infinite bool) (*Layer, error) {
	l := &Layer{Kind: LayerGroup}
	if err := p.layerCommon(el, l); err != nil {
		return nil, err
	}

	children, err := p.parseLayers(el, infinite, nil)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", l.Name, err)
	}
	l.Layers = children
	return l, nil
}

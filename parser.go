package tmxparser

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// parser carries the state shared by every sub-parser of one invocation.
// A fresh parser is built per call, so parses on separate inputs are safe
// to run concurrently.
type parser struct {
	log *zap.Logger
}

// parsePhase tracks the map parse through its phases. It exists for error
// reporting; any failure flips the parse to phaseFailed and aborts.
type parsePhase int

const (
	phaseUnparsed parsePhase = iota
	phaseAttributes
	phaseTilesets
	phaseLayers
	phaseGroups
	phaseComplete
	phaseFailed
)

func (s parsePhase) String() string {
	switch s {
	case phaseUnparsed:
		return "unparsed"
	case phaseAttributes:
		return "parsing attributes"
	case phaseTilesets:
		return "parsing tilesets"
	case phaseLayers:
		return "parsing layers"
	case phaseGroups:
		return "parsing groups"
	case phaseComplete:
		return "complete"
	}
	return "failed"
}

// mapParser is the top-level orchestrator for one map document.
type mapParser struct {
	parser
	phase parsePhase
	m     *Map
}

func newMapParser(log *zap.Logger) *mapParser {
	return &mapParser{parser: parser{log: log}, m: &Map{}}
}

// parseMap drives the whole parse: attributes, then tilesets, then the
// layer tree. The first structural failure aborts and is surfaced as a
// single wrapped error.
func (p *mapParser) parseMap(root *etree.Element) (*Map, error) {
	m, err := p.run(root)
	if err != nil {
		failedIn := p.phase
		p.phase = phaseFailed
		return nil, fmt.Errorf("parse map (%s): %w", failedIn, err)
	}
	p.phase = phaseComplete
	return m, nil
}

func (p *mapParser) run(root *etree.Element) (*Map, error) {
	if root == nil || root.Tag != "map" {
		return nil, fmt.Errorf("root element is not <map>: %w", ErrUnsupportedFormat)
	}

	p.phase = phaseAttributes
	if err := p.parseMapAttributes(root); err != nil {
		return nil, err
	}

	p.phase = phaseTilesets
	if err := p.parseTilesetRefs(root); err != nil {
		return nil, err
	}

	p.phase = phaseLayers
	layers, err := p.parseLayers(root, p.m.Infinite, func() { p.phase = phaseGroups })
	if err != nil {
		return nil, err
	}
	p.m.Layers = layers

	return p.m, nil
}

func (p *mapParser) parseMapAttributes(root *etree.Element) error {
	m := p.m

	var err error
	m.Version, _ = attr(root, "version")
	m.TiledVersion, _ = attr(root, "tiledversion")
	m.Class = classAttr(root)
	if m.Orientation, err = requireAttr(root, "orientation"); err != nil {
		return err
	}
	m.RenderOrder, _ = attr(root, "renderorder")
	if m.Width, err = requireIntAttr(root, "width"); err != nil {
		return err
	}
	if m.Height, err = requireIntAttr(root, "height"); err != nil {
		return err
	}
	if m.TileWidth, err = requireIntAttr(root, "tilewidth"); err != nil {
		return err
	}
	if m.TileHeight, err = requireIntAttr(root, "tileheight"); err != nil {
		return err
	}
	if m.Infinite, err = boolAttr(root, "infinite", false); err != nil {
		return err
	}
	if m.BackgroundColor, err = colorAttr(root, "backgroundcolor"); err != nil {
		return err
	}
	if m.ParallaxOrigin.X, err = floatAttr(root, "parallaxoriginx", 0); err != nil {
		return err
	}
	if m.ParallaxOrigin.Y, err = floatAttr(root, "parallaxoriginy", 0); err != nil {
		return err
	}
	if props := root.SelectElement("properties"); props != nil {
		if m.Properties, err = p.parseProperties(props); err != nil {
			return err
		}
	}
	return nil
}

// parseTilesetRefs collects the map's tileset references in document order.
// Nodes without a source attribute are embedded tilesets and are parsed in
// place; the rest stay unresolved until the caller loads them. The range
// table is kept sorted by ascending first gid for resolution.
func (p *mapParser) parseTilesetRefs(root *etree.Element) error {
	for _, child := range root.ChildElements() {
		if child.Tag != "tileset" {
			continue
		}
		if _, ok := attr(child, "firstgid"); !ok {
			return fmt.Errorf("<tileset> %q: %w", "firstgid", ErrMissingAttribute)
		}
		firstGID, err := uintAttr(child, "firstgid", 0)
		if err != nil {
			return err
		}
		if firstGID == 0 {
			// GID 0 means "no tile", so no tileset may claim it.
			return fmt.Errorf(`<tileset> firstgid="0": not a valid first gid`)
		}

		ref := &TilesetRef{FirstGID: firstGID}
		if src, ok := attr(child, "source"); ok {
			ref.Source = src
		} else {
			ts, err := p.parseTileset(child)
			if err != nil {
				return err
			}
			ref.Tileset = ts
		}
		p.m.Tilesets = append(p.m.Tilesets, ref)
	}

	sort.Slice(p.m.Tilesets, func(i, j int) bool {
		return p.m.Tilesets[i].FirstGID < p.m.Tilesets[j].FirstGID
	})
	return nil
}

// readDocument parses raw bytes into an etree document, honoring a declared
// non-UTF-8 encoding.
func readDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return doc, nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "us-ascii":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1250":
		return charmap.Windows1250.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("declared encoding %q: %w", charset, ErrUnsupportedFormat)
}

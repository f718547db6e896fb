package tmxparser

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Option adjusts a single parse invocation. Options never touch package
// state, so concurrent parses stay independent.
type Option func(*config)

type config struct {
	log     *zap.Logger
	baseDir string
}

// WithLogger routes parser diagnostics through the given logger. The
// default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithBaseDir resolves every external tileset reference against dir once
// the map itself has parsed.
func WithBaseDir(dir string) Option {
	return func(c *config) { c.baseDir = dir }
}

func newConfig(opts []Option) *config {
	c := &config{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse reads and parses a TMX map file. External tilesets are resolved
// relative to the file's directory unless WithBaseDir overrides it.
func Parse(path string, opts ...Option) (*Map, error) {
	if filepath.Ext(path) != ".tmx" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMap(data, append([]Option{WithBaseDir(filepath.Dir(path))}, opts...)...)
}

// ParseMap parses a complete TMX document held in memory. The returned map
// owns everything beneath it and is not retained by the engine.
func ParseMap(data []byte, opts ...Option) (*Map, error) {
	c := newConfig(opts)
	doc, err := readDocument(data)
	if err != nil {
		return nil, err
	}
	m, err := newMapParser(c.log).parseMap(doc.Root())
	if err != nil {
		return nil, err
	}
	if c.baseDir != "" {
		if err := m.LoadExternalTilesets(c.baseDir); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ParseTilesetFile reads and parses a standalone TSX tileset file.
func ParseTilesetFile(path string, opts ...Option) (*Tileset, error) {
	if filepath.Ext(path) != ".tsx" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTileset(data, opts...)
}

// ParseTileset parses a tileset from a full TSX document or a bare
// <tileset> fragment held in memory.
func ParseTileset(data []byte, opts ...Option) (*Tileset, error) {
	c := newConfig(opts)
	doc, err := readDocument(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "tileset" {
		return nil, fmt.Errorf("root element is not <tileset>: %w", ErrUnsupportedFormat)
	}
	p := &parser{log: c.log}
	ts, err := p.parseTileset(root)
	if err != nil {
		return nil, fmt.Errorf("parse tileset: %w", err)
	}
	return ts, nil
}

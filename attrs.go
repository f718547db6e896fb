package tmxparser

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/beevik/etree"
)

// Attribute coercion helpers over etree elements. All numeric conversions
// go through strconv, which always uses a period as the decimal separator
// regardless of host locale; TMX documents require exactly that.

// attr returns the raw text of an attribute and whether it was present.
func attr(el *etree.Element, name string) (string, bool) {
	if a := el.SelectAttr(name); a != nil {
		return a.Value, true
	}
	return "", false
}

// requireAttr returns the raw text of an attribute or fails the parse.
func requireAttr(el *etree.Element, name string) (string, error) {
	if v, ok := attr(el, name); ok {
		return v, nil
	}
	return "", fmt.Errorf("<%s> %q: %w", el.Tag, name, ErrMissingAttribute)
}

func intAttr(el *etree.Element, name string, def int) (int, error) {
	raw, ok := attr(el, name)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("<%s> %s=%q: %w", el.Tag, name, raw, err)
	}
	return v, nil
}

func requireIntAttr(el *etree.Element, name string) (int, error) {
	raw, err := requireAttr(el, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("<%s> %s=%q: %w", el.Tag, name, raw, err)
	}
	return v, nil
}

func uintAttr(el *etree.Element, name string, def uint32) (uint32, error) {
	raw, ok := attr(el, name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("<%s> %s=%q: %w", el.Tag, name, raw, err)
	}
	return uint32(v), nil
}

func floatAttr(el *etree.Element, name string, def float64) (float64, error) {
	raw, ok := attr(el, name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("<%s> %s=%q: %w", el.Tag, name, raw, err)
	}
	return v, nil
}

// boolAttr accepts the literal values "1" and "0" only.
func boolAttr(el *etree.Element, name string, def bool) (bool, error) {
	raw, ok := attr(el, name)
	if !ok {
		return def, nil
	}
	switch raw {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("<%s> %s=%q: not a boolean literal", el.Tag, name, raw)
}

// colorAttr parses "#RRGGBB" or "#AARRGGBB" (the leading '#' is optional).
// Eight hex digits are alpha-first, matching what Tiled writes.
func colorAttr(el *etree.Element, name string) (*color.RGBA, error) {
	raw, ok := attr(el, name)
	if !ok {
		return nil, nil
	}
	c, err := parseColor(raw)
	if err != nil {
		return nil, fmt.Errorf("<%s> %s=%q: %w", el.Tag, name, raw, err)
	}
	return c, nil
}

func parseColor(s string) (*color.RGBA, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return nil, err
	}
	switch len(s) {
	case 6:
		return &color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	case 8:
		return &color.RGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}
	return nil, fmt.Errorf("color literal must have 6 or 8 hex digits, got %d", len(s))
}

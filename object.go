package tmxparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// parseObject parses a single <object>. The shape is discriminated by the
// presence of a point/ellipse/polygon/polyline child; failing those, a gid
// attribute makes it a tile object, and anything else is a rectangle.
func (p *parser) parseObject(el *etree.Element) (*Object, error) {
	o := &Object{Shape: ShapeRectangle}

	var err error
	if o.ID, err = intAttr(el, "id", 0); err != nil {
		return nil, err
	}
	o.Name, _ = attr(el, "name")
	o.Class = classAttr(el)
	if o.X, err = floatAttr(el, "x", 0); err != nil {
		return nil, err
	}
	if o.Y, err = floatAttr(el, "y", 0); err != nil {
		return nil, err
	}
	if o.Width, err = floatAttr(el, "width", 0); err != nil {
		return nil, err
	}
	if o.Height, err = floatAttr(el, "height", 0); err != nil {
		return nil, err
	}
	if o.Rotation, err = floatAttr(el, "rotation", 0); err != nil {
		return nil, err
	}
	if o.Visible, err = boolAttr(el, "visible", true); err != nil {
		return nil, err
	}
	if props := el.SelectElement("properties"); props != nil {
		if o.Properties, err = p.parseProperties(props); err != nil {
			return nil, err
		}
	}

	// A tile object's gid carries the same flip bits as tile layer data.
	if raw, err := uintAttr(el, "gid", 0); err != nil {
		return nil, err
	} else if raw != 0 {
		o.Shape = ShapeTile
		o.GID, o.Flags = splitGID(raw)
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "point":
			o.Shape = ShapePoint
		case "ellipse":
			o.Shape = ShapeEllipse
		case "polygon", "polyline":
			if child.Tag == "polygon" {
				o.Shape = ShapePolygon
			} else {
				o.Shape = ShapePolyline
			}
			raw, err := requireAttr(child, "points")
			if err != nil {
				return nil, err
			}
			if o.Points, err = parsePoints(raw); err != nil {
				return nil, fmt.Errorf("object %d: %w", o.ID, err)
			}
		}
	}

	return o, nil
}

// parsePoints parses a space-separated list of "x,y" pairs.
func parsePoints(raw string) ([]Point, error) {
	fields := strings.Fields(raw)
	points := make([]Point, 0, len(fields))
	for _, field := range fields {
		xy := strings.SplitN(field, ",", 2)
		if len(xy) != 2 {
			return nil, fmt.Errorf("point %q: want \"x,y\"", field)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", field, err)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", field, err)
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, nil
}

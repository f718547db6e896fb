package tmxparser

import "errors"

// Possible errors. Parse failures wrap one of these (or the underlying
// tree/strconv cause) with the offending element and attribute, and always
// abort the parse; no partial document is ever returned.
var (
	ErrUnsupportedFormat       = errors.New("tmxparser: unsupported file format")
	ErrMissingAttribute        = errors.New("tmxparser: missing required attribute")
	ErrUnknownElement          = errors.New("tmxparser: unknown element")
	ErrUnsupportedEncoding     = errors.New("tmxparser: unsupported tile data encoding")
	ErrUnsupportedCompression  = errors.New("tmxparser: unsupported tile data compression")
	ErrInvalidTileData         = errors.New("tmxparser: invalid tile data")
	ErrExternalTilesetNotFound = errors.New("tmxparser: external tileset not found")
)

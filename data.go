package tmxparser

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// splitGID clears the three flip bits out of a raw 32-bit tile value and
// shifts them into the low bits of a flag byte.
func splitGID(raw uint32) (gid uint32, flags uint8) {
	return raw &^ GIDFlipMask, uint8(raw >> 29)
}

// rawGID packs a bare GID and a flag byte back into the wire form. It is
// the inverse of splitGID for every value whose flag bits fit in the low 3
// bits of the byte.
func rawGID(gid uint32, flags uint8) uint32 {
	return (gid &^ GIDFlipMask) | uint32(flags&0x7)<<29
}

// decodeTileData turns the inner text of a <data> or <chunk> node into the
// parallel GID/flag arrays. The same routine serves flat layer data and
// per-chunk data of infinite maps.
func decodeTileData(encoding, compression, text string) ([]uint32, []uint8, error) {
	switch encoding {
	case "csv":
		if compression != "" {
			return nil, nil, fmt.Errorf("csv data with compression %q: %w", compression, ErrUnsupportedCompression)
		}
		return decodeCSV(text)
	case "base64":
		return decodeBase64(compression, text)
	}
	return nil, nil, fmt.Errorf("encoding %q: %w", encoding, ErrUnsupportedEncoding)
}

func decodeCSV(text string) ([]uint32, []uint8, error) {
	tokens := strings.Split(text, ",")
	gids := make([]uint32, 0, len(tokens))
	flags := make([]uint8, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		raw, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("csv token %q: %w", tok, ErrInvalidTileData)
		}
		g, f := splitGID(uint32(raw))
		gids = append(gids, g)
		flags = append(flags, f)
	}
	return gids, flags, nil
}

func decodeBase64(compression, text string) ([]uint32, []uint8, error) {
	data, err := base64.StdEncoding.DecodeString(stripSpace(text))
	if err != nil {
		return nil, nil, fmt.Errorf("base64 tile data: %w", err)
	}

	switch compression {
	case "":
	case "zlib":
		// The two-byte zlib header is skipped and the body inflated as raw
		// deflate; the adler32 trailer is left unread.
		if len(data) < 2 {
			return nil, nil, fmt.Errorf("zlib tile data of %d bytes: %w", len(data), ErrInvalidTileData)
		}
		data, err = io.ReadAll(flate.NewReader(bytes.NewReader(data[2:])))
		if err != nil {
			return nil, nil, fmt.Errorf("inflate tile data: %w", err)
		}
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("gzip tile data: %w", err)
		}
		data, err = io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, nil, fmt.Errorf("gzip tile data: %w", err)
		}
	case "zstd":
		// Valid per the format, but deliberately not decoded.
		return nil, nil, fmt.Errorf("zstd: %w", ErrUnsupportedCompression)
	default:
		return nil, nil, fmt.Errorf("compression %q: %w", compression, ErrUnsupportedCompression)
	}

	if len(data)%4 != 0 {
		return nil, nil, fmt.Errorf("tile data of %d bytes is not a whole number of records: %w", len(data), ErrInvalidTileData)
	}

	n := len(data) / 4
	gids := make([]uint32, n)
	flags := make([]uint8, n)
	for i := 0; i < n; i++ {
		raw := binary.LittleEndian.Uint32(data[i*4:])
		gids[i], flags[i] = splitGID(raw)
	}
	return gids, flags, nil
}

func stripSpace(in string) string {
	var b strings.Builder
	b.Grow(len(in))
	for _, r := range in {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

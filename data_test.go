package tmxparser

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func encodeRaw(raws []uint32) []byte {
	buf := make([]byte, 4*len(raws))
	for i, raw := range raws {
		binary.LittleEndian.PutUint32(buf[i*4:], raw)
	}
	return buf
}

var fixtureRaws = []uint32{
	0,
	1,
	42,
	1 | GIDFlippedHorizontally,
	7 | GIDFlippedVertically,
	9 | GIDFlippedDiagonally,
	100 | GIDFlipMask,
	0x1fffffff,
}

func TestSplitGIDRoundTrip(t *testing.T) {
	for _, raw := range fixtureRaws {
		gid, flags := splitGID(raw)
		if gid&GIDFlipMask != 0 {
			t.Errorf("splitGID(%#x): gid %#x still carries flip bits", raw, gid)
		}
		if flags > 7 {
			t.Errorf("splitGID(%#x): flag byte %#x uses more than 3 bits", raw, flags)
		}
		if got := rawGID(gid, flags); got != raw {
			t.Errorf("rawGID(splitGID(%#x)) = %#x", raw, got)
		}
	}

	// Every flag combination survives the round trip on its own.
	for flags := uint8(0); flags < 8; flags++ {
		gid, got := splitGID(rawGID(12, flags))
		if gid != 12 || got != flags {
			t.Errorf("round trip gid=12 flags=%#x: got gid=%d flags=%#x", flags, gid, got)
		}
	}
}

func TestSplitGIDBits(t *testing.T) {
	_, flags := splitGID(5 | GIDFlippedHorizontally)
	if flags != FlagFlippedHorizontally {
		t.Errorf("horizontal flip byte = %#x, want %#x", flags, FlagFlippedHorizontally)
	}
	_, flags = splitGID(5 | GIDFlippedVertically)
	if flags != FlagFlippedVertically {
		t.Errorf("vertical flip byte = %#x, want %#x", flags, FlagFlippedVertically)
	}
	_, flags = splitGID(5 | GIDFlippedDiagonally)
	if flags != FlagFlippedDiagonally {
		t.Errorf("diagonal flip byte = %#x, want %#x", flags, FlagFlippedDiagonally)
	}
}

func TestDecodeCSVMatchesBase64(t *testing.T) {
	tokens := make([]string, len(fixtureRaws))
	for i, raw := range fixtureRaws {
		tokens[i] = fmt.Sprintf("%d", raw)
	}
	csvText := "\n" + strings.Join(tokens, ",\n") + "\n"
	b64Text := base64.StdEncoding.EncodeToString(encodeRaw(fixtureRaws))

	csvGIDs, csvFlags, err := decodeTileData("csv", "", csvText)
	if err != nil {
		t.Fatalf("csv decode: %v", err)
	}
	b64GIDs, b64Flags, err := decodeTileData("base64", "", b64Text)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}

	if !equalU32(csvGIDs, b64GIDs) || !bytes.Equal(csvFlags, b64Flags) {
		t.Errorf("csv and base64 decode disagree:\ncsv  %v %v\nb64  %v %v", csvGIDs, csvFlags, b64GIDs, b64Flags)
	}
}

func TestDecodeCompressedMatchesRaw(t *testing.T) {
	payload := encodeRaw(fixtureRaws)

	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	if _, err := zw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var gbuf bytes.Buffer
	gw := gzip.NewWriter(&gbuf)
	if _, err := gw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	wantGIDs, wantFlags, err := decodeTileData("base64", "", base64.StdEncoding.EncodeToString(payload))
	if err != nil {
		t.Fatalf("raw decode: %v", err)
	}

	for _, tc := range []struct {
		compression string
		data        []byte
	}{
		{"zlib", zbuf.Bytes()},
		{"gzip", gbuf.Bytes()},
	} {
		gids, flags, err := decodeTileData("base64", tc.compression, base64.StdEncoding.EncodeToString(tc.data))
		if err != nil {
			t.Fatalf("%s decode: %v", tc.compression, err)
		}
		if !equalU32(gids, wantGIDs) || !bytes.Equal(flags, wantFlags) {
			t.Errorf("%s decode disagrees with raw form", tc.compression)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(encodeRaw([]uint32{1, 2}))

	tests := []struct {
		name        string
		encoding    string
		compression string
		text        string
		want        error
	}{
		{"zstd recognized but unsupported", "base64", "zstd", raw, ErrUnsupportedCompression},
		{"unknown compression", "base64", "lzma", raw, ErrUnsupportedCompression},
		{"compressed csv", "csv", "zlib", "1,2", ErrUnsupportedCompression},
		{"unknown encoding", "hex", "", "0001", ErrUnsupportedEncoding},
		{"missing encoding", "", "", "1,2", ErrUnsupportedEncoding},
		{"partial record", "base64", "", base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4, 5}), ErrInvalidTileData},
		{"bad csv token", "csv", "", "1,two,3", ErrInvalidTileData},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := decodeTileData(tc.encoding, tc.compression, tc.text)
			if !errors.Is(err, tc.want) {
				t.Errorf("decodeTileData(%q, %q) error = %v, want %v", tc.encoding, tc.compression, err, tc.want)
			}
		})
	}
}

func equalU32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Command tmxdump inspects TMX maps and TSX tilesets. By default it writes
// the parsed document as JSON next to the input; -tilesets prints the
// resolved gid range table instead.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	tmxparser "github.com/JiepengTan/tmx_parser"
)

func main() {
	input := flag.String("input", "", "TMX map or TSX tileset to parse")
	output := flag.String("output", "", "JSON output path (default: input with a .json suffix)")
	base := flag.String("base", "", "directory for external tilesets (default: the map's directory)")
	tilesets := flag.Bool("tilesets", false, "print the resolved tileset range table instead of writing JSON")
	verbose := flag.Bool("v", false, "log parser diagnostics to stderr")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	var opts []tmxparser.Option
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		defer logger.Sync()
		opts = append(opts, tmxparser.WithLogger(logger))
	}
	if *base != "" {
		opts = append(opts, tmxparser.WithBaseDir(*base))
	}

	switch filepath.Ext(*input) {
	case ".tsx":
		ts, err := tmxparser.ParseTilesetFile(*input, opts...)
		if err != nil {
			log.Fatalf("parse tileset: %v", err)
		}
		dump(*input, *output, ts)
	default:
		m, err := tmxparser.Parse(*input, opts...)
		if err != nil {
			log.Fatalf("parse map: %v", err)
		}
		if *tilesets {
			printRanges(m)
			return
		}
		dump(*input, *output, m)
	}
}

// printRanges lists each tileset with the half-open gid range it owns. The
// last entry has no upper bound.
func printRanges(m *tmxparser.Map) {
	for i, ref := range m.Tilesets {
		upper := "..."
		if i+1 < len(m.Tilesets) {
			upper = fmt.Sprintf("%d", m.Tilesets[i+1].FirstGID-1)
		}

		name := ref.Source
		switch {
		case ref.Embedded():
			name = ref.Tileset.Name + " (embedded)"
		case ref.Tileset != nil:
			name = fmt.Sprintf("%s (%s)", ref.Tileset.Name, ref.Source)
		default:
			name += " (unresolved)"
		}

		count := "?"
		if ref.Tileset != nil {
			count = fmt.Sprintf("%d", ref.Tileset.TileCount)
		}
		fmt.Printf("[%d..%s] %s, %s tiles\n", ref.FirstGID, upper, name, count)
	}
}

func dump(input, output string, v any) {
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		log.Fatalf("write %s: %v", output, err)
	}
	fmt.Printf("wrote %s\n", output)
}

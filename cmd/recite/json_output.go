package main

import (
	"encoding/json"
	"io"
)

// writeJSON emits v as indented JSON for machine consumers of --json flags.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// printer writes human-readable output.
type printer struct {
	w io.Writer
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) field(name string, value any) {
	fmt.Fprintf(p.w, "  %-14s %v\n", name+":", value)
}

// print writes v as indented JSON in --json mode, otherwise calls text.
func (a *app) print(cmd *cobra.Command, v any, text func(p *printer)) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(&printer{w: out})
	return nil
}

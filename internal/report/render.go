// Package report renders pipeline results for the terminal and for the pull
// request comment.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Render writes the report to w in the requested format.
func Render(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatTable, "":
		return renderTable(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, r *Report) error {
	header := color.New(color.Bold)
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		header.DisableColor()
	}

	if r.Result == nil || r.Result.ResourceCount == 0 {
		fmt.Fprintln(w, "No deployable resources detected.")
		return nil
	}

	if r.Analysis != nil && r.Analysis.Summary != "" {
		fmt.Fprintln(w, r.Analysis.Summary)
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header.Fprintln(tw, "KIND\tTYPE\tSKU\tREGION")
	for _, res := range r.Result.Resources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Kind, res.Type, dash(res.SKU), dash(res.Region))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d resource%s", r.Result.ResourceCount, plural(r.Result.ResourceCount))
	if n := len(r.Result.RemovedFields); n > 0 {
		fmt.Fprintf(w, ", %d field%s redacted", n, plural(n))
	}
	fmt.Fprintln(w)
	return nil
}

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veldtec/iacscan/internal/analyzer"
	"github.com/veldtec/iacscan/pkg/types"
)

// Report is everything the renderers need for one pipeline run.
type Report struct {
	Files    []string                  `json:"files"`
	Result   *types.SanitizationResult `json:"result"`
	Analysis *analyzer.Analysis        `json:"analysis"`
	Skipped  []string                  `json:"skipped,omitempty"`
}

// Markdown renders the pull request review comment body. Everything in it
// comes from sanitized records and the analysis text; the caller wraps it
// with the ownership marker when posting.
func Markdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("## Infrastructure change review\n\n")

	if r.Result == nil || r.Result.ResourceCount == 0 {
		sb.WriteString("No deployable resources detected in the changed templates.\n")
		return sb.String()
	}

	if r.Analysis != nil && r.Analysis.Summary != "" {
		sb.WriteString(r.Analysis.Summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString("| Kind | Type | SKU | Region |\n")
	sb.WriteString("|------|------|-----|--------|\n")
	for _, res := range r.Result.Resources {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			res.Kind, res.Type, dash(res.SKU), dash(res.Region))
	}

	fmt.Fprintf(&sb, "\n%d file%s compiled, %d resource%s analyzed.\n",
		len(r.Files), plural(len(r.Files)), r.Result.ResourceCount, plural(r.Result.ResourceCount))

	if len(r.Result.RemovedFields) > 0 {
		fmt.Fprintf(&sb, "\n<sub>%d property field%s redacted before analysis: %s</sub>\n",
			len(r.Result.RemovedFields), plural(len(r.Result.RemovedFields)),
			strings.Join(sortedCopy(r.Result.RemovedFields), ", "))
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&sb, "\n<sub>Skipped (compile or parse failure): %s</sub>\n",
			strings.Join(r.Skipped, ", "))
	}

	if r.Analysis != nil && r.Analysis.Source == analyzer.SourceLocal {
		sb.WriteString("\n<sub>Summary generated locally.</sub>\n")
	}

	return sb.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veldtec/iacscan/pkg/types"
)

// LocalSummary builds a deterministic, template-based summary from sanitized
// resources. It is the fallback whenever the remote path is unavailable or
// refused, so it must work offline and produce identical output for identical
// input.
func LocalSummary(resources []types.SanitizedResource) string {
	if len(resources) == 0 {
		return "No deployable resources were found in the changed templates."
	}

	counts := make(map[string]int)
	regions := make(map[string]bool)
	changes := make(map[string]int)
	for _, r := range resources {
		n := r.Count
		if n == 0 {
			n = 1
		}
		counts[r.Kind] += n
		if r.Region != "" {
			regions[r.Region] = true
		}
		if r.Change != "" {
			changes[r.Change] += n
		}
	}

	var sb strings.Builder
	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(&sb, "This change deploys %d resource%s", total, plural(total))

	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
	}
	fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))

	if len(regions) > 0 {
		names := make([]string, 0, len(regions))
		for region := range regions {
			names = append(names, region)
		}
		sort.Strings(names)
		fmt.Fprintf(&sb, " across %s", strings.Join(names, ", "))
	}
	sb.WriteString(".")

	if len(changes) > 0 {
		var notes []string
		for _, change := range []string{types.ChangeAdded, types.ChangeModified, types.ChangeRemoved} {
			if n := changes[change]; n > 0 {
				notes = append(notes, fmt.Sprintf("%d %s", n, change))
			}
		}
		if len(notes) > 0 {
			fmt.Fprintf(&sb, " Changes: %s.", strings.Join(notes, ", "))
		}
	}

	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

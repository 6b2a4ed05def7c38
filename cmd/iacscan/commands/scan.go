package commands

import (
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veldtec/iacscan/internal/extractor"
	"github.com/veldtec/iacscan/internal/report"
	"github.com/veldtec/iacscan/internal/sanitizer"
	"github.com/veldtec/iacscan/pkg/types"
)

func newScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "Compile, extract and sanitize local template files",
		Long: `Scan runs the extraction and sanitization stages against local files and
prints the result, without talking to the pull request host. Useful for
checking what a review run would report.

Files ending in .json are treated as already-compiled templates; everything
else is compiled with the bicep binary first.`,
		Example: `  iacscan scan ./deploy/main.bicep
  iacscan scan --output json ./out/main.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().Bool("remote", false, "also run the remote analysis (local summary is the default)")
	cmd.Flags().String("repo-root", ".", "path prefix for the given files")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	remote, _ := cmd.Flags().GetBool("remote")
	repoRoot, _ := cmd.Flags().GetString("repo-root")

	// Precompiled templates bypass the compiler entirely.
	var precompiled, toCompile []string
	for _, arg := range args {
		if isJSONFile(arg) {
			precompiled = append(precompiled, arg)
		} else {
			toCompile = append(toCompile, arg)
		}
	}

	var rep *report.Report
	if len(toCompile) > 0 {
		var err error
		rep, err = buildReport(ctx, repoRoot, toCompile, remote)
		if err != nil {
			return err
		}
	} else {
		rep = &report.Report{}
	}

	var metadata []types.ResourceMetadata
	for _, file := range precompiled {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		result, err := extractor.Extract(data)
		if err != nil {
			log.WithField("file", file).Error("extraction failed, skipping file", err)
			rep.Skipped = append(rep.Skipped, file)
			continue
		}
		metadata = append(metadata, result.Resources...)
		rep.Files = append(rep.Files, file)
	}
	if len(metadata) > 0 {
		merged := rep.Result
		sanitized := sanitizer.Sanitize(metadata)
		if merged == nil {
			rep.Result = sanitized
		} else {
			merged.Resources = append(merged.Resources, sanitized.Resources...)
			merged.ResourceCount += sanitized.ResourceCount
			merged.RemovedFields = mergeSorted(merged.RemovedFields, sanitized.RemovedFields)
		}
		rep.Analysis = newAnalyzer(remote).Analyze(ctx, rep.Result.Resources)
	}

	return report.Render(os.Stdout, rep, viper.GetString("output.format"))
}

func isJSONFile(path string) bool {
	return len(path) > 5 && path[len(path)-5:] == ".json"
}

func mergeSorted(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

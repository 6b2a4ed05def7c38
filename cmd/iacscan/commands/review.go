package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veldtec/iacscan/internal/analyzer"
	"github.com/veldtec/iacscan/internal/compiler"
	iacerrors "github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/internal/extractor"
	"github.com/veldtec/iacscan/internal/report"
	"github.com/veldtec/iacscan/internal/sanitizer"
	"github.com/veldtec/iacscan/internal/scm"
	"github.com/veldtec/iacscan/pkg/types"
)

func newReviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the pull request's IaC changes and post a comment",
		Long: `Review runs the full pipeline: it asks the host API which files the pull
request changed, compiles each changed Bicep file, extracts and sanitizes
resource facts, generates an analysis, and posts (or updates) the review
comment on the pull request.

Per-file compile and parse failures skip that file and continue. A privacy
validation failure aborts the outbound analysis call and falls back to the
local summary; it is never retried with the same payload.`,
		Example: `  # Typical pipeline usage (PR id from the environment)
  iacscan review

  # Explicit pull request, comment not posted
  iacscan review --pull-request 421 --dry-run`,
		RunE: runReview,
	}

	cmd.Flags().Int("pull-request", 0, "pull request ID (default: SYSTEM_PULLREQUEST_PULLREQUESTID)")
	cmd.Flags().String("repo-root", ".", "checked out repository root")
	cmd.Flags().Bool("dry-run", false, "print the comment instead of posting it")
	cmd.Flags().Bool("no-remote", false, "skip the remote analysis service")

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	prID, _ := cmd.Flags().GetInt("pull-request")
	repoRoot, _ := cmd.Flags().GetString("repo-root")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noRemote, _ := cmd.Flags().GetBool("no-remote")

	if prID == 0 {
		if env := os.Getenv("SYSTEM_PULLREQUEST_PULLREQUESTID"); env != "" {
			prID, _ = strconv.Atoi(env)
		}
	}
	if prID == 0 {
		return iacerrors.New(iacerrors.ErrorTypeConfiguration, "no pull request ID").
			WithSolutions("pass --pull-request, or run inside a pipeline that sets SYSTEM_PULLREQUEST_PULLREQUESTID")
	}

	client, err := scm.NewClient(cfg.SCM.BaseURL, cfg.SCM.Repository, cfg.SCMToken(), log)
	if err != nil {
		return err
	}

	files, err := client.ChangedFiles(ctx, prID, cfg.SCM.Extension)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("no changed IaC files in this pull request, nothing to do")
		return nil
	}
	log.WithField("count", len(files)).Info("found changed IaC files")

	rep, err := buildReport(ctx, repoRoot, files, !noRemote && cfg.Analyzer.Remote)
	if err != nil {
		return err
	}

	body := report.Markdown(rep)
	if dryRun {
		fmt.Println(body)
		return nil
	}
	return client.PostOrUpdateComment(ctx, prID, body)
}

// buildReport compiles, extracts and sanitizes the given files, then runs the
// analyzer. Shared between review and scan.
func buildReport(ctx context.Context, repoRoot string, files []string, remote bool) (*report.Report, error) {
	binPath, err := compiler.Resolve(ctx, cfg.Compiler.Path, cfg.Compiler.Version, log)
	if err != nil {
		return nil, err
	}
	bicep := compiler.New(binPath, cfg.CompileTimeout(), log)

	var (
		metadata []types.ResourceMetadata
		compiled []string
		skipped  []string
	)
	for _, file := range files {
		local := filepath.Join(repoRoot, strings.TrimPrefix(file, "/"))

		template, err := bicep.Compile(ctx, local)
		if err != nil {
			log.WithField("file", file).Error("compile failed, skipping file", err)
			skipped = append(skipped, file)
			continue
		}

		result, err := extractor.Extract(template)
		if err != nil {
			log.WithField("file", file).Error("extraction failed, skipping file", err)
			skipped = append(skipped, file)
			continue
		}

		metadata = append(metadata, result.Resources...)
		compiled = append(compiled, file)
	}

	sanitized := sanitizer.Sanitize(metadata)
	if n := len(sanitized.RemovedFields); n > 0 {
		log.WithFields(map[string]interface{}{
			"removed_fields": sanitized.RemovedFields,
			"count":          n,
		}).Info("redacted property fields before analysis")
	}

	analysis := newAnalyzer(remote).Analyze(ctx, sanitized.Resources)

	return &report.Report{
		Files:    compiled,
		Result:   sanitized,
		Analysis: analysis,
		Skipped:  skipped,
	}, nil
}

// newAnalyzer builds the analyzer from configuration. When the remote path is
// requested but no credentials are available it degrades to local-only with a
// warning.
func newAnalyzer(remote bool) *analyzer.Analyzer {
	opts := []analyzer.Option{analyzer.WithTimeout(cfg.AnalyzeTimeout())}
	if remote {
		if claude, err := analyzer.NewClaudeClient(cfg.Analyzer.Model); err != nil {
			log.Warn("remote analysis unavailable: " + err.Error())
		} else {
			opts = append(opts, analyzer.WithRemote(claude))
		}
	}
	return analyzer.New(log, opts...)
}

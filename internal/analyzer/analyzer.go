// Package analyzer turns sanitized resource records into a short analysis for
// the review comment. It consumes only SanitizedResource values, and still
// re-validates the full payload immediately before any network transmission:
// defense in depth against a sanitizer bug, not a replacement for it.
package analyzer

import (
	"context"
	"time"

	"github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/internal/logger"
	"github.com/veldtec/iacscan/internal/sanitizer"
	"github.com/veldtec/iacscan/pkg/types"
)

// Analysis sources.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// Analysis is the result handed to the report renderer.
type Analysis struct {
	Summary string
	Source  string
}

// RemoteClient is the narrow interface to a remote analysis service.
type RemoteClient interface {
	Summarize(ctx context.Context, resources []types.SanitizedResource) (string, error)
}

// Analyzer produces an analysis, preferring the remote service and falling
// back to a deterministic local summary on any failure.
type Analyzer struct {
	remote  RemoteClient
	log     logger.Logger
	timeout time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRemote enables the remote analysis path.
func WithRemote(client RemoteClient) Option {
	return func(a *Analyzer) { a.remote = client }
}

// WithTimeout overrides the remote call deadline.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// New creates an Analyzer. Without WithRemote it only ever produces local
// summaries.
func New(log logger.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		log:     log,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze summarizes the sanitized resources. The outbound payload is
// validated from scratch right before transmission; a non-empty violation
// list aborts the network call for good. There is no strip-and-retry: the
// same payload is never re-sent after failing validation.
func (a *Analyzer) Analyze(ctx context.Context, resources []types.SanitizedResource) *Analysis {
	if a.remote != nil {
		if result := sanitizer.Validate(resources); !result.Valid {
			err := errors.NewPrivacyViolation(len(result.Violations))
			a.log.Error("outbound payload failed privacy validation, transmission aborted", err)
			return a.local(resources)
		}

		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		summary, err := a.remote.Summarize(callCtx, resources)
		if err == nil && summary != "" {
			return &Analysis{Summary: summary, Source: SourceRemote}
		}
		if err != nil {
			a.log.WithField("fallback", SourceLocal).Error("remote analysis failed", err)
		}
	}
	return a.local(resources)
}

func (a *Analyzer) local(resources []types.SanitizedResource) *Analysis {
	return &Analysis{Summary: LocalSummary(resources), Source: SourceLocal}
}

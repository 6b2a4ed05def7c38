package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtec/iacscan/internal/logger"
	"github.com/veldtec/iacscan/pkg/types"
)

type fakeRemote struct {
	summary string
	err     error
	calls   int
}

func (f *fakeRemote) Summarize(ctx context.Context, resources []types.SanitizedResource) (string, error) {
	f.calls++
	return f.summary, f.err
}

func cleanResources() []types.SanitizedResource {
	return []types.SanitizedResource{
		{Type: "Microsoft.Compute/virtualMachines", Kind: "vm", SKU: "Standard_D2s_v3", Region: "eastus"},
		{Type: "Microsoft.Storage/storageAccounts", Kind: "storage", Region: "eastus"},
	}
}

func TestAnalyzeRemoteSuccess(t *testing.T) {
	remote := &fakeRemote{summary: "looks fine"}
	a := New(logger.Discard(), WithRemote(remote))

	analysis := a.Analyze(context.Background(), cleanResources())
	assert.Equal(t, SourceRemote, analysis.Source)
	assert.Equal(t, "looks fine", analysis.Summary)
	assert.Equal(t, 1, remote.calls)
}

func TestAnalyzeFallsBackOnRemoteError(t *testing.T) {
	remote := &fakeRemote{err: errors.New("boom")}
	a := New(logger.Discard(), WithRemote(remote))

	analysis := a.Analyze(context.Background(), cleanResources())
	assert.Equal(t, SourceLocal, analysis.Source)
	assert.NotEmpty(t, analysis.Summary)
	assert.Equal(t, 1, remote.calls)
}

func TestAnalyzeFallsBackOnEmptyRemoteSummary(t *testing.T) {
	remote := &fakeRemote{summary: ""}
	a := New(logger.Discard(), WithRemote(remote))

	analysis := a.Analyze(context.Background(), cleanResources())
	assert.Equal(t, SourceLocal, analysis.Source)
}

func TestAnalyzePrivacyViolationNeverTransmits(t *testing.T) {
	// The payload carries a GUID: validation must fail closed and the remote
	// client must never see the data.
	tainted := []types.SanitizedResource{
		{Type: "t", Kind: "vm", SafeProperties: map[string]any{
			"leak": "12345678-1234-1234-1234-123456789012",
		}},
	}
	remote := &fakeRemote{summary: "should never be used"}
	a := New(logger.Discard(), WithRemote(remote))

	analysis := a.Analyze(context.Background(), tainted)
	assert.Equal(t, SourceLocal, analysis.Source)
	assert.Zero(t, remote.calls, "remote client must not be called for a payload that failed validation")
}

func TestAnalyzeWithoutRemote(t *testing.T) {
	a := New(logger.Discard())
	analysis := a.Analyze(context.Background(), cleanResources())
	assert.Equal(t, SourceLocal, analysis.Source)
}

func TestLocalSummaryEmpty(t *testing.T) {
	summary := LocalSummary(nil)
	assert.Contains(t, summary, "No deployable resources")
}

func TestLocalSummaryContent(t *testing.T) {
	summary := LocalSummary(cleanResources())
	assert.Contains(t, summary, "2 resources")
	assert.Contains(t, summary, "1 storage")
	assert.Contains(t, summary, "1 vm")
	assert.Contains(t, summary, "eastus")
}

func TestLocalSummaryDeterministic(t *testing.T) {
	resources := []types.SanitizedResource{
		{Kind: "vm", Region: "westeurope"},
		{Kind: "storage", Region: "eastus"},
		{Kind: "vm", Region: "eastus"},
	}
	first := LocalSummary(resources)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, LocalSummary(resources))
	}
}

func TestLocalSummaryAggregatedCounts(t *testing.T) {
	resources := []types.SanitizedResource{
		{Kind: "vm", Count: 3, Change: types.ChangeAdded},
		{Kind: "storage", Count: 1, Change: types.ChangeRemoved},
	}
	summary := LocalSummary(resources)
	assert.Contains(t, summary, "4 resources")
	assert.Contains(t, summary, "3 added")
	assert.Contains(t, summary, "1 removed")
}

package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/pkg/types"
)

const defaultModel = "claude-3-5-haiku-latest"

const systemPrompt = `You are reviewing an infrastructure-as-code change for a pull request.
You receive a JSON list of sanitized resource records: type, kind, sku, region,
api version, and a reduced set of safe configuration properties. Summarize in
2-4 sentences what this change deploys, and point out anything a reviewer
should double check (open network rules, missing redundancy, unusual SKUs).
Do not speculate about resource names or identifiers; none are included.`

// ClaudeClient implements RemoteClient against the Anthropic API.
type ClaudeClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewClaudeClient builds a remote client. The API key comes from
// ANTHROPIC_API_KEY; model may be empty to use the default.
func NewClaudeClient(model string) (*ClaudeClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New(errors.ErrorTypeConfiguration, "ANTHROPIC_API_KEY environment variable is required for remote analysis").
			WithSolutions("export ANTHROPIC_API_KEY, or run with --no-remote for local-only analysis")
	}
	if model == "" {
		model = defaultModel
	}
	return &ClaudeClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}, nil
}

// Summarize sends the sanitized payload for analysis. Callers are responsible
// for validating the payload first; this method only handles transport.
func (c *ClaudeClient) Summarize(ctx context.Context, resources []types.SanitizedResource) (string, error) {
	payload, err := json.Marshal(resources)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNetwork, "failed to encode analysis payload", err)
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(payload))),
		},
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNetwork, "remote analysis request failed", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", errors.New(errors.ErrorTypeNetwork, "remote analysis returned an empty response")
	}
	return summary, nil
}

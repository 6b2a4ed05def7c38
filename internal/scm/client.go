// Package scm talks to the pull request host API: listing changed files and
// posting the review comment. Narrow request/response glue with retries; no
// resource content ever flows through here except the already-sanitized
// report body.
package scm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/internal/logger"
)

const apiVersion = "7.1"

// Client is an Azure DevOps Git API client scoped to one repository.
type Client struct {
	baseURL    string // https://dev.azure.com/{org}/{project}
	repository string
	token      string
	httpClient *http.Client
	log        logger.Logger
	maxRetries int
}

// NewClient creates a client. token is a personal access token with code
// read/write scope.
func NewClient(baseURL, repository, token string, log logger.Logger) (*Client, error) {
	if baseURL == "" || repository == "" {
		return nil, errors.New(errors.ErrorTypeConfiguration, "scm base URL and repository are required")
	}
	if token == "" {
		return nil, errors.New(errors.ErrorTypeConfiguration, "scm access token is required").
			WithSolutions("set IACSCAN_SCM_TOKEN or pass the pipeline's System.AccessToken")
	}
	return &Client{
		baseURL:    baseURL,
		repository: repository,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		maxRetries: 3,
	}, nil
}

// do sends one API request, retrying with backoff on 5xx responses and
// transport errors. The response body is decoded into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrorTypeNetwork, "failed to encode request body", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.log.WithFields(map[string]interface{}{
				"attempt": attempt,
				"backoff": backoff.String(),
			}).Debug("retrying scm request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return errors.Wrap(errors.ErrorTypeNetwork, "scm request cancelled", ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return errors.Wrap(errors.ErrorTypeNetwork, "failed to build scm request", err)
		}
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+c.token)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("scm API returned status %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return errors.New(errors.ErrorTypeNetwork, fmt.Sprintf("scm API returned status %d for %s %s", resp.StatusCode, method, url))
		}

		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return errors.Wrap(errors.ErrorTypeNetwork, "failed to decode scm response", err)
			}
		}
		return nil
	}
	return errors.Wrap(errors.ErrorTypeNetwork, fmt.Sprintf("scm request failed after %d attempts", c.maxRetries+1), lastErr)
}

func (c *Client) prURL(pullRequestID int, suffix string) string {
	return fmt.Sprintf("%s/_apis/git/repositories/%s/pullRequests/%d/%s?api-version=%s",
		c.baseURL, c.repository, pullRequestID, suffix, apiVersion)
}

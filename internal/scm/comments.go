package scm

import (
	"context"
	"fmt"
	"strings"
)

// CommentMarker identifies the review comment this tool owns, so reruns
// update it instead of piling up new threads.
const CommentMarker = "<!-- iacscan:report -->"

type threadList struct {
	Value []thread `json:"value"`
}

type thread struct {
	ID       int       `json:"id"`
	Status   string    `json:"status,omitempty"`
	Comments []comment `json:"comments"`
}

type comment struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// PostOrUpdateComment publishes the report body as a PR thread. When a thread
// containing the marker already exists, its first comment is replaced in
// place. The body is wrapped with the marker on every call; wrapping is
// deliberately not idempotent, callers must pass the unwrapped body.
func (c *Client) PostOrUpdateComment(ctx context.Context, pullRequestID int, body string) error {
	content := CommentMarker + "\n" + body

	var threads threadList
	if err := c.do(ctx, "GET", c.prURL(pullRequestID, "threads"), nil, &threads); err != nil {
		return err
	}

	for _, t := range threads.Value {
		if len(t.Comments) == 0 || !strings.Contains(t.Comments[0].Content, CommentMarker) {
			continue
		}
		url := fmt.Sprintf("%s/_apis/git/repositories/%s/pullRequests/%d/threads/%d/comments/%d?api-version=%s",
			c.baseURL, c.repository, pullRequestID, t.ID, t.Comments[0].ID, apiVersion)
		c.log.WithField("thread", t.ID).Debug("updating existing review comment")
		return c.do(ctx, "PATCH", url, map[string]string{"content": content}, nil)
	}

	c.log.Debug("creating review comment thread")
	payload := map[string]any{
		"status": "closed",
		"comments": []map[string]any{
			{"parentCommentId": 0, "content": content, "commentType": "text"},
		},
	}
	return c.do(ctx, "POST", c.prURL(pullRequestID, "threads"), payload, nil)
}

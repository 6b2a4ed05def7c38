package scm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtec/iacscan/internal/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "infra", "pat-token", logger.Discard())
	require.NoError(t, err)
	return client, server
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("https://dev.azure.com/org/proj", "infra", "", logger.Discard())
	assert.Error(t, err)

	_, err = NewClient("", "infra", "pat", logger.Discard())
	assert.Error(t, err)
}

func TestChangedFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/_apis/git/repositories/infra/pullRequests/42/iterations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"count": 2,
			"value": []map[string]any{{"id": 1}, {"id": 2}},
		})
	})
	mux.HandleFunc("/_apis/git/repositories/infra/pullRequests/42/iterations/2/changes", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"changeEntries": []map[string]any{
				{"changeType": "edit", "item": map[string]any{"path": "/deploy/main.bicep"}},
				{"changeType": "add", "item": map[string]any{"path": "/deploy/app.bicep"}},
				{"changeType": "add", "item": map[string]any{"path": "/deploy/main.bicep"}},
				{"changeType": "delete", "item": map[string]any{"path": "/deploy/gone.bicep"}},
				{"changeType": "edit", "item": map[string]any{"path": "/README.md"}},
				{"changeType": "edit", "item": map[string]any{"path": "/deploy", "isFolder": true}},
			},
		})
	})

	client, _ := newTestClient(t, mux)
	files, err := client.ChangedFiles(context.Background(), 42, ".bicep")
	require.NoError(t, err)
	assert.Equal(t, []string{"/deploy/app.bicep", "/deploy/main.bicep"}, files)
}

func TestChangedFilesNoIterations(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"count": 0, "value": []any{}})
	}))

	files, err := client.ChangedFiles(context.Background(), 7, ".bicep")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDoRetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"count": 0, "value": []any{}})
	}))

	_, err := client.ChangedFiles(context.Background(), 1, ".bicep")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDoGivesUpOn4xx(t *testing.T) {
	var attempts atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.ChangedFiles(context.Background(), 1, ".bicep")
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load(), "4xx responses must not be retried")
}

func TestDoSendsBasicAuth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "Basic "))
		json.NewEncoder(w).Encode(map[string]any{"count": 0, "value": []any{}})
	}))

	_, err := client.ChangedFiles(context.Background(), 1, ".bicep")
	require.NoError(t, err)
}

func TestPostOrUpdateCommentCreates(t *testing.T) {
	var posted map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/_apis/git/repositories/infra/pullRequests/42/threads", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{"value": []any{}})
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("{}"))
		}
	})

	client, _ := newTestClient(t, mux)
	err := client.PostOrUpdateComment(context.Background(), 42, "report body")
	require.NoError(t, err)

	require.NotNil(t, posted)
	comments := posted["comments"].([]any)
	content := comments[0].(map[string]any)["content"].(string)
	assert.True(t, strings.HasPrefix(content, CommentMarker))
	assert.Contains(t, content, "report body")
}

func TestPostOrUpdateCommentUpdatesExisting(t *testing.T) {
	var patched map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/_apis/git/repositories/infra/pullRequests/42/threads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{
					"id": 9,
					"comments": []map[string]any{
						{"id": 1, "content": CommentMarker + "\nold body"},
					},
				},
			},
		})
	})
	mux.HandleFunc("/_apis/git/repositories/infra/pullRequests/42/threads/9/comments/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		w.Write([]byte("{}"))
	})

	client, _ := newTestClient(t, mux)
	err := client.PostOrUpdateComment(context.Background(), 42, "new body")
	require.NoError(t, err)
	assert.Contains(t, patched["content"], "new body")
	assert.Contains(t, patched["content"], CommentMarker)
}

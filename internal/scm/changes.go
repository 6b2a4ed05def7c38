package scm

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type iterationList struct {
	Count int         `json:"count"`
	Value []iteration `json:"value"`
}

type iteration struct {
	ID int `json:"id"`
}

type changeList struct {
	ChangeEntries []changeEntry `json:"changeEntries"`
}

type changeEntry struct {
	ChangeType string `json:"changeType"`
	Item       struct {
		Path          string `json:"path"`
		IsFolder      bool   `json:"isFolder"`
		GitObjectType string `json:"gitObjectType"`
	} `json:"item"`
}

// ChangedFiles returns repository paths of files touched by the pull request,
// filtered to the given extension (e.g. ".bicep"), sorted and deduplicated.
// Deleted files are excluded since there is nothing left to compile.
func (c *Client) ChangedFiles(ctx context.Context, pullRequestID int, extension string) ([]string, error) {
	var iterations iterationList
	if err := c.do(ctx, "GET", c.prURL(pullRequestID, "iterations"), nil, &iterations); err != nil {
		return nil, err
	}
	if len(iterations.Value) == 0 {
		return nil, nil
	}

	// The latest iteration's cumulative diff covers the whole PR.
	latest := iterations.Value[0].ID
	for _, it := range iterations.Value {
		if it.ID > latest {
			latest = it.ID
		}
	}

	url := c.prURL(pullRequestID, fmt.Sprintf("iterations/%d/changes", latest)) + "&$compareTo=0"
	var changes changeList
	if err := c.do(ctx, "GET", url, nil, &changes); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	for _, entry := range changes.ChangeEntries {
		if entry.Item.IsFolder || entry.ChangeType == "delete" {
			continue
		}
		path := entry.Item.Path
		if !strings.HasSuffix(strings.ToLower(path), strings.ToLower(extension)) {
			continue
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

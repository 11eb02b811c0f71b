// Package gitlab provides the GitLab API client handed to handlers so
// they can respond to the events that triggered them.
package gitlab

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hookflow/hookflow/pkg/models"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	http *resty.Client
}

// NewClient builds a client against a GitLab instance. Token is a
// personal or project access token sent as PRIVATE-TOKEN.
func NewClient(baseURL, token string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL + "/api/v4").
			SetHeader("PRIVATE-TOKEN", token).
			SetTimeout(defaultTimeout),
	}
}

func (c *Client) ProviderType() string {
	return models.ProviderGitLab
}

// PostMergeRequestNote adds a note to a merge request.
func (c *Client) PostMergeRequestNote(ctx context.Context, projectID int, mergeRequestIID int, body string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"body": body}).
		Post(fmt.Sprintf("/projects/%d/merge_requests/%d/notes", projectID, mergeRequestIID))
	if err != nil {
		return fmt.Errorf("posting merge request note: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("posting merge request note: status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// PostIssueNote adds a note to an issue.
func (c *Client) PostIssueNote(ctx context.Context, projectID int, issueIID int, body string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"body": body}).
		Post(fmt.Sprintf("/projects/%d/issues/%d/notes", projectID, issueIID))
	if err != nil {
		return fmt.Errorf("posting issue note: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("posting issue note: status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

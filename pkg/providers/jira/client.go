// Package jira provides the Jira API client handed to handlers.
package jira

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

// NewClient builds a client against a Jira Cloud site using basic auth
// with an API token.
func NewClient(baseURL, email, token string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL + "/rest/api/3").
			SetBasicAuth(email, token).
			SetTimeout(defaultTimeout),
	}
}

func (c *Client) ProviderType() string {
	return models.ProviderJira
}

// AddComment adds a plain-text comment to an issue.
func (c *Client) AddComment(ctx context.Context, issueKey string, body string) error {
	comment := map[string]any{
		"body": map[string]any{
			"type":    "doc",
			"version": 1,
			"content": []any{
				map[string]any{
					"type": "paragraph",
					"content": []any{
						map[string]any{"type": "text", "text": body},
					},
				},
			},
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(comment).
		Post(fmt.Sprintf("/issue/%s/comment", issueKey))
	if err != nil {
		return fmt.Errorf("adding comment to %s: %w", issueKey, err)
	}

	if resp.IsError() {
		return fmt.Errorf("adding comment to %s: status %d: %s", issueKey, resp.StatusCode(), resp.String())
	}

	return nil
}

// Transition moves an issue through its workflow.
func (c *Client) Transition(ctx context.Context, issueKey string, transitionID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"transition": map[string]string{"id": transitionID}}).
		Post(fmt.Sprintf("/issue/%s/transitions", issueKey))
	if err != nil {
		return fmt.Errorf("transitioning %s: %w", issueKey, err)
	}

	if resp.IsError() {
		return fmt.Errorf("transitioning %s: status %d: %s", issueKey, resp.StatusCode(), resp.String())
	}

	return nil
}

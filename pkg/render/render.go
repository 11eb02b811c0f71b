// Package render maps dispatch outcomes onto the response envelopes of
// the two deployment targets. The container target returns the payload as
// a JSON object; the serverless target wraps the identical payload as a
// JSON-encoded string, which is what the function platform expects in its
// body field.
package render

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hookflow/hookflow/pkg/models"
)

// ContainerResponse is the envelope of the long-lived container target.
// StatusCode stays 200 on a completed dispatch even when individual
// handlers failed; those surface in Message only.
type ContainerResponse struct {
	StatusCode        int    `json:"statusCode"`
	Message           string `json:"message"`
	TriggersProcessed int    `json:"triggersProcessed"`
}

// ServerlessResponse is the envelope of the serverless target. Body is a
// string holding the JSON encoding of the container payload shape.
type ServerlessResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Container renders a dispatch outcome for the container target. A
// non-nil err is a fatal load failure and renders as 500.
func Container(result models.DispatchResult, err error) ContainerResponse {
	if err != nil {
		return ContainerResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    err.Error(),
		}
	}

	return ContainerResponse{
		StatusCode:        http.StatusOK,
		Message:           message(result),
		TriggersProcessed: result.TriggersProcessed,
	}
}

// Serverless renders the same outcome for the serverless target.
func Serverless(result models.DispatchResult, err error) (ServerlessResponse, error) {
	container := Container(result, err)

	body, marshalErr := json.Marshal(container)
	if marshalErr != nil {
		return ServerlessResponse{}, marshalErr
	}

	return ServerlessResponse{
		StatusCode: container.StatusCode,
		Body:       string(body),
	}, nil
}

func message(result models.DispatchResult) string {
	msg := fmt.Sprintf("Processed %d triggers", result.TriggersProcessed)

	if len(result.Errors) == 0 {
		return msg
	}

	summaries := make([]string, 0, len(result.Errors))
	for _, failure := range result.Errors {
		summaries = append(summaries, fmt.Sprintf("[%s] %s", failure.Kind, failure.Message))
	}

	return fmt.Sprintf("%s; %d failed: %s", msg, len(result.Errors), strings.Join(summaries, "; "))
}

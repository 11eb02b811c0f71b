package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

const (
	runtimeAPIVersion = "2018-06-01"
	requestIDHeader   = "Lambda-Runtime-Aws-Request-Id"
)

// Runtime polls the AWS Lambda custom runtime API for invocations and
// answers each one through the Handler. apiAddress comes from the
// AWS_LAMBDA_RUNTIME_API environment variable in real deployments.
type Runtime struct {
	http    *resty.Client
	handler *Handler
	logger  *slog.Logger
}

func NewRuntime(apiAddress string, handler *Handler, logger *slog.Logger) *Runtime {
	return &Runtime{
		http: resty.New().
			SetBaseURL(fmt.Sprintf("http://%s/%s", apiAddress, runtimeAPIVersion)),
		handler: handler,
		logger:  logger.With("module", "lambda_runtime"),
	}
}

// Run processes invocations until ctx is cancelled. The next-invocation
// poll is long-lived; the platform holds it open until work arrives.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.next(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}

			r.logger.Error("Invocation cycle failed", "error", err)
		}
	}
}

func (r *Runtime) next(ctx context.Context) error {
	resp, err := r.http.R().
		SetContext(ctx).
		Get("/runtime/invocation/next")
	if err != nil {
		return fmt.Errorf("fetching next invocation: %w", err)
	}

	requestID := resp.Header().Get(requestIDHeader)
	if requestID == "" {
		return errors.New("next invocation response has no request id")
	}

	envelope := r.handler.Handle(ctx, resp.Body())

	body, err := json.Marshal(envelope)
	if err != nil {
		return r.reportError(ctx, requestID, err)
	}

	postResp, err := r.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/runtime/invocation/%s/response", requestID))
	if err != nil {
		return fmt.Errorf("posting invocation response: %w", err)
	}

	if postResp.IsError() {
		return fmt.Errorf("posting invocation response: status %d", postResp.StatusCode())
	}

	return nil
}

func (r *Runtime) reportError(ctx context.Context, requestID string, cause error) error {
	payload := map[string]string{
		"errorMessage": cause.Error(),
		"errorType":    "DispatchError",
	}

	_, err := r.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(fmt.Sprintf("/runtime/invocation/%s/error", requestID))
	if err != nil {
		return fmt.Errorf("reporting invocation error: %w", err)
	}

	return cause
}

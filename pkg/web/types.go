package web

import "github.com/hookflow/hookflow/pkg/models"

// ExecuteRequest is the dispatch entry payload, identical for the
// container and serverless targets.
type ExecuteRequest struct {
	UserCode models.Bundle          `json:"userCode" validate:"required"`
	Trigger  models.TriggerIdentity `json:"trigger"  validate:"required"`
	Data     map[string]any         `json:"data"`
}

// Descriptor assembles the dispatch-time event descriptor from the
// request.
func (r ExecuteRequest) Descriptor() models.EventDescriptor {
	return models.EventDescriptor{
		Trigger: r.Trigger,
		Data:    r.Data,
	}
}

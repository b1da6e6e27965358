// internal/workers/meetings/auto-schedule/validation.go
package autoschedule

import (
	"fmt"

	"meeting-scheduler/internal/common/errors"
	"meeting-scheduler/internal/common/validation"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"jobId", "hrId"},
		Properties: map[string]validation.Property{
			"jobId": {
				Type:        "string",
				Description: "Job posting identifier",
				Pattern:     strPtr("^[0-9a-fA-F]{24}$"),
			},
			"hrId": {
				Type:        "string",
				Description: "HR user triggering the run",
				Pattern:     strPtr("^[0-9a-fA-F]{24}$"),
			},
		},
		// Zeebe process scope carries unrelated variables.
		AdditionalProperties: true,
	}
}

func strPtr(s string) *string {
	return &s
}

// validateInput rejects malformed job variables before any external
// call is made. Both ids must be 24-hex platform identifiers.
func validateInput(input *Input) *errors.StandardError {
	if input.JobID == "" {
		return errors.NewInvalidInputError("jobId is required")
	}
	if input.HRID == "" {
		return errors.NewInvalidInputError("hrId is required")
	}
	if !validation.ValidateObjectID(input.JobID) {
		return errors.NewInvalidInputError(fmt.Sprintf("jobId %q is not a valid id", input.JobID))
	}
	if !validation.ValidateObjectID(input.HRID) {
		return errors.NewInvalidInputError(fmt.Sprintf("hrId %q is not a valid id", input.HRID))
	}
	return nil
}

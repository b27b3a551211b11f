package factory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/warp/panel-estimator/schedule"
)

// =============================================================================
// ASSIGNMENT BATCHES
// =============================================================================

// AssignmentJSON is the JSON form of one calendar assignment.
type AssignmentJSON struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	StartHour  int    `json:"start_hour"`
	Duration   int    `json:"duration"`
	ProjectID  string `json:"project_id,omitempty"`
	Title      string `json:"title,omitempty"`
}

func (aj AssignmentJSON) Assignment() schedule.Assignment {
	return schedule.Assignment{
		ID:         aj.ID,
		ResourceID: aj.ResourceID,
		Date:       aj.Date,
		StartHour:  aj.StartHour,
		Duration:   aj.Duration,
		ProjectID:  aj.ProjectID,
		Title:      aj.Title,
	}
}

// Assignments converts a decoded batch, keeping its order.
func Assignments(items []AssignmentJSON) []schedule.Assignment {
	out := make([]schedule.Assignment, len(items))
	for i, it := range items {
		out[i] = it.Assignment()
	}
	return out
}

// ParseAssignments decodes a batch of assignments. Both a bare array and an
// {"assignments": [...]} envelope are accepted. Items are not validated here;
// schedule.DetectConflicts does that.
func ParseAssignments(data []byte) ([]schedule.Assignment, error) {
	var items []AssignmentJSON

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse assignments JSON: %w", err)
		}
	} else {
		var envelope struct {
			Assignments []AssignmentJSON `json:"assignments"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse assignments JSON: %w", err)
		}
		items = envelope.Assignments
	}

	return Assignments(items), nil
}

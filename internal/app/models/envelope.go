package models

import "encoding/json"

// Frontend action names the agent backend can address. These are the only
// keys ever forwarded out of a chat response; anything else is ignored.
const (
	ActionUpdateItinerary     = "updateItinerary"
	ActionUpdateFeaturedSpots = "updateFeaturedSpots"
	ActionUpdateSocialPosts   = "updateSocialPosts"
	ActionUpdateHotActivities = "updateHotActivities"
	ActionUpdateTripInfo      = "updateTripInfo"
)

// ActionNames lists the recognized actions in a stable order.
var ActionNames = []string{
	ActionUpdateItinerary,
	ActionUpdateFeaturedSpots,
	ActionUpdateSocialPosts,
	ActionUpdateHotActivities,
	ActionUpdateTripInfo,
}

// CopilotEnvelope is the chat backend's response shape. Only the pieces the
// interceptor cares about are modeled; the rest of the body passes through
// untouched.
type CopilotEnvelope struct {
	Data struct {
		GenerateCopilotResponse struct {
			ThreadID   string `json:"threadId"`
			RunID      string `json:"runId"`
			Extensions struct {
				// Kept raw so a single malformed value skips one key
				// instead of failing the whole envelope.
				FrontendActions map[string]json.RawMessage `json:"frontendActions"`
			} `json:"extensions"`
		} `json:"generateCopilotResponse"`
	} `json:"data"`
}

// ActionResult is what every dispatch-table entry returns to its caller.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

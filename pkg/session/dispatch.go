package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Action names accepted by Dispatch. They mirror the controller methods for
// hosts that speak named-action request/response messages.
const (
	ActionExtractComments       = "extractComments"
	ActionStopExtraction        = "stopExtraction"
	ActionGetExtractionProgress = "getExtractionProgress"
	ActionPlay                  = "play"
	ActionPause                 = "pause"
	ActionStop                  = "stop"
	ActionNext                  = "next"
	ActionPrevious              = "previous"
	ActionSetSpeed              = "setSpeed"
	ActionToggleUniqueVoices    = "toggleUniqueVoices"
	ActionSetVoiceLocale        = "setVoiceLocale"
	ActionGetState              = "getState"
	ActionCleanup               = "cleanup"
)

// AckResponse acknowledges actions with no richer payload.
type AckResponse struct {
	Success bool `json:"success"`
}

// Dispatch routes a named action with a JSON payload to the matching
// controller method. Unknown actions and malformed payloads are host
// programming errors and return a Go error; domain failures are reported
// inside the response structs.
func (c *Controller) Dispatch(ctx context.Context, action string, payload json.RawMessage) (interface{}, error) {
	switch action {
	case ActionExtractComments:
		var req ExtractRequest
		if err := unmarshalPayload(payload, &req); err != nil {
			return nil, err
		}
		return c.ExtractComments(ctx, req), nil

	case ActionStopExtraction:
		return c.StopExtraction(), nil

	case ActionGetExtractionProgress:
		return c.ExtractionProgress(), nil

	case ActionPlay:
		return c.Play(), nil

	case ActionPause:
		return c.Pause(), nil

	case ActionStop:
		return c.Stop(), nil

	case ActionNext:
		return c.Next(), nil

	case ActionPrevious:
		return c.Previous(), nil

	case ActionSetSpeed:
		var req SpeedRequest
		if err := unmarshalPayload(payload, &req); err != nil {
			return nil, err
		}
		return c.SetSpeed(req.Speed), nil

	case ActionToggleUniqueVoices:
		var req ToggleRequest
		if err := unmarshalPayload(payload, &req); err != nil {
			return nil, err
		}
		return c.ToggleUniqueVoices(req.Enabled), nil

	case ActionSetVoiceLocale:
		var req LocaleRequest
		if err := unmarshalPayload(payload, &req); err != nil {
			return nil, err
		}
		return c.SetVoiceLocale(req.Locale), nil

	case ActionGetState:
		return c.State(), nil

	case ActionCleanup:
		c.Cleanup()
		return AckResponse{Success: true}, nil

	default:
		return nil, fmt.Errorf("unknown action: %q", action)
	}
}

func unmarshalPayload(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

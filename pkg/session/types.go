package session

import (
	"github.com/entrhq/threadvoice/pkg/extract"
	"github.com/entrhq/threadvoice/pkg/playback"
)

// ExtractRequest names the budgets and voice preferences for one extraction.
type ExtractRequest struct {
	MaxDepth    int    `json:"maxDepth"`
	MaxTopLevel int    `json:"maxTopLevelComments"`
	MaxTotal    int    `json:"maxTotalComments"`
	Strategy    string `json:"expansionStrategy"`

	VoiceLocale    string   `json:"voiceLocale"`
	SelectedVoices []string `json:"selectedVoices"`
}

// ExtractResponse reports the outcome of an extraction request. A document
// with no comment nodes is a zero-count success, not an error.
type ExtractResponse struct {
	Success    bool             `json:"success"`
	Count      int              `json:"count"`
	TotalItems int              `json:"totalItems"`
	HasTitle   bool             `json:"hasTitle"`
	HasBody    bool             `json:"hasBody"`
	Title      string           `json:"title,omitempty"`
	Comments   []extract.Record `json:"comments,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// StopResponse acknowledges a stop-extraction request.
type StopResponse struct {
	Success bool `json:"success"`
	Stopped bool `json:"stopped"`
}

// ProgressResponse reports extraction progress for polling hosts.
type ProgressResponse struct {
	IsExtracting bool    `json:"isExtracting"`
	Progress     float64 `json:"progress"`
	CanStop      bool    `json:"canStop"`
}

// TransportResponse is returned by the playback transport actions.
type TransportResponse struct {
	Success bool           `json:"success"`
	State   playback.State `json:"state"`
	Error   string         `json:"error,omitempty"`
}

// StateResponse is the full session snapshot: playback state plus extraction
// metadata and the extracted comments.
type StateResponse struct {
	Playback     playback.State   `json:"playback"`
	IsExtracting bool             `json:"isExtracting"`
	Count        int              `json:"count"`
	HasTitle     bool             `json:"hasTitle"`
	HasBody      bool             `json:"hasBody"`
	Title        string           `json:"title,omitempty"`
	Comments     []extract.Record `json:"comments,omitempty"`
}

// SpeedRequest carries the setSpeed payload.
type SpeedRequest struct {
	Speed float64 `json:"speed"`
}

// ToggleRequest carries the toggleUniqueVoices payload.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// LocaleRequest carries the setVoiceLocale payload.
type LocaleRequest struct {
	Locale string `json:"locale"`
}

package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDSpeech is the identifier for the speech settings section
	SectionIDSpeech = "speech"

	// Default values for speech settings
	defaultVoiceLocale  = "en-US"
	defaultUniqueVoices = true
	defaultSpeed        = 1.0
)

// SpeechSection holds the voice and synthesizer preferences.
type SpeechSection struct {
	VoiceLocale    string   `json:"voice_locale"`
	SelectedVoices []string `json:"selected_voices"`
	UniqueVoices   bool     `json:"unique_voices"`
	Speed          float64  `json:"speed"`
	Command        string   `json:"command"`
	Args           []string `json:"args"`
	mu             sync.RWMutex
}

// NewSpeechSection creates a speech section with default settings.
func NewSpeechSection() *SpeechSection {
	return &SpeechSection{
		VoiceLocale:  defaultVoiceLocale,
		UniqueVoices: defaultUniqueVoices,
		Speed:        defaultSpeed,
	}
}

// ID returns the section identifier.
func (s *SpeechSection) ID() string {
	return SectionIDSpeech
}

// Title returns the section title.
func (s *SpeechSection) Title() string {
	return "Speech Settings"
}

// Description returns the section description.
func (s *SpeechSection) Description() string {
	return "Configure voice selection, rotation, rate, and the synthesizer command."
}

// Data returns the current configuration data.
func (s *SpeechSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"voice_locale":    s.VoiceLocale,
		"selected_voices": append([]string(nil), s.SelectedVoices...),
		"unique_voices":   s.UniqueVoices,
		"speed":           s.Speed,
		"command":         s.Command,
		"args":            append([]string(nil), s.Args...),
	}
}

// SetData updates the configuration from the provided data.
func (s *SpeechSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "voice_locale":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for voice_locale: expected string, got %T", value)
			}
			s.VoiceLocale = str

		case "selected_voices":
			voices, err := stringSliceValue(key, value)
			if err != nil {
				return err
			}
			s.SelectedVoices = voices

		case "unique_voices":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for unique_voices: expected bool, got %T", value)
			}
			s.UniqueVoices = enabled

		case "speed":
			switch v := value.(type) {
			case float64:
				s.Speed = v
			case int:
				s.Speed = float64(v)
			default:
				return fmt.Errorf("invalid value type for speed: expected number, got %T", value)
			}

		case "command":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for command: expected string, got %T", value)
			}
			s.Command = str

		case "args":
			args, err := stringSliceValue(key, value)
			if err != nil {
				return err
			}
			s.Args = args
		}
	}

	return nil
}

// Validate checks the section's current values.
func (s *SpeechSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", s.Speed)
	}
	return nil
}

// Reset restores the section's defaults.
func (s *SpeechSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.VoiceLocale = defaultVoiceLocale
	s.SelectedVoices = nil
	s.UniqueVoices = defaultUniqueVoices
	s.Speed = defaultSpeed
	s.Command = ""
	s.Args = nil
}

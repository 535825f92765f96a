package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are the environment variables layered over the stored
// configuration. Pointer fields distinguish unset variables from explicit
// zero values.
type EnvOverrides struct {
	MaxDepth            *int     `env:"THREADVOICE_MAX_DEPTH"`
	MaxTopLevelComments *int     `env:"THREADVOICE_MAX_TOP_LEVEL"`
	MaxTotalComments    *int     `env:"THREADVOICE_MAX_TOTAL"`
	Strategy            *string  `env:"THREADVOICE_STRATEGY"`
	AuthorFilters       []string `env:"THREADVOICE_AUTHOR_FILTERS" envSeparator:","`
	Headless            *bool    `env:"THREADVOICE_HEADLESS"`
	VoiceLocale         *string  `env:"THREADVOICE_VOICE_LOCALE"`
	SelectedVoices      []string `env:"THREADVOICE_VOICES" envSeparator:","`
	UniqueVoices        *bool    `env:"THREADVOICE_UNIQUE_VOICES"`
	Speed               *float64 `env:"THREADVOICE_SPEED"`
	SpeechCommand       *string  `env:"THREADVOICE_SPEECH_COMMAND"`
}

// ParseEnv reads overrides from the process environment.
func ParseEnv() (EnvOverrides, error) {
	var overrides EnvOverrides
	if err := env.Parse(&overrides); err != nil {
		return EnvOverrides{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return overrides, nil
}

// Apply layers the set overrides onto the reader and speech sections.
// Either section may be nil.
func (o EnvOverrides) Apply(reader *ReaderSection, speech *SpeechSection) {
	if reader != nil {
		reader.mu.Lock()
		if o.MaxDepth != nil {
			reader.MaxDepth = *o.MaxDepth
		}
		if o.MaxTopLevelComments != nil {
			reader.MaxTopLevelComments = *o.MaxTopLevelComments
		}
		if o.MaxTotalComments != nil {
			reader.MaxTotalComments = *o.MaxTotalComments
		}
		if o.Strategy != nil {
			reader.Strategy = *o.Strategy
		}
		if len(o.AuthorFilters) > 0 {
			reader.AuthorFilters = append([]string(nil), o.AuthorFilters...)
		}
		if o.Headless != nil {
			reader.Headless = *o.Headless
		}
		reader.mu.Unlock()
	}

	if speech != nil {
		speech.mu.Lock()
		if o.VoiceLocale != nil {
			speech.VoiceLocale = *o.VoiceLocale
		}
		if len(o.SelectedVoices) > 0 {
			speech.SelectedVoices = append([]string(nil), o.SelectedVoices...)
		}
		if o.UniqueVoices != nil {
			speech.UniqueVoices = *o.UniqueVoices
		}
		if o.Speed != nil {
			speech.Speed = *o.Speed
		}
		if o.SpeechCommand != nil {
			speech.Command = *o.SpeechCommand
		}
		speech.mu.Unlock()
	}
}

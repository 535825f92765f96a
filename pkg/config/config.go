package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)

	if err := manager.RegisterSection(NewReaderSection()); err != nil {
		return err
	}

	if err := manager.RegisterSection(NewSpeechSection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetReader returns the reader section from global config.
// Returns nil if config is not initialized.
func GetReader() *ReaderSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDReader)
	if !ok {
		return nil
	}

	reader, ok := section.(*ReaderSection)
	if !ok {
		return nil
	}
	return reader
}

// GetSpeech returns the speech section from global config.
// Returns nil if config is not initialized.
func GetSpeech() *SpeechSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDSpeech)
	if !ok {
		return nil
	}

	speech, ok := section.(*SpeechSection)
	if !ok {
		return nil
	}
	return speech
}

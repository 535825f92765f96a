package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.SetSection("reader", map[string]interface{}{
		"max_depth": 6,
		"strategy":  "breadth",
	}))
	require.NoError(t, store.Save())

	// A fresh store over the same path sees the persisted data.
	reloaded, err := NewFileStore(path)
	require.NoError(t, err)

	data, err := reloaded.GetSection("reader")
	require.NoError(t, err)
	assert.Equal(t, float64(6), data["max_depth"], "JSON numbers decode as float64")
	assert.Equal(t, "breadth", data["strategy"])
}

func TestFileStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "config.json")

	store, err := NewFileStore(path)
	require.NoError(t, err, "missing file is a fresh install")

	data, err := store.GetSection("reader")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestManagerLoadSaveAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	manager := NewManager(store)
	reader := NewReaderSection()
	speech := NewSpeechSection()
	require.NoError(t, manager.RegisterSection(reader))
	require.NoError(t, manager.RegisterSection(speech))

	reader.MaxDepth = 7
	speech.VoiceLocale = "en-GB"
	require.NoError(t, manager.SaveAll())

	// Load into a second manager with fresh sections.
	store2, err := NewFileStore(path)
	require.NoError(t, err)
	manager2 := NewManager(store2)
	reader2 := NewReaderSection()
	speech2 := NewSpeechSection()
	require.NoError(t, manager2.RegisterSection(reader2))
	require.NoError(t, manager2.RegisterSection(speech2))
	require.NoError(t, manager2.LoadAll())

	assert.Equal(t, 7, reader2.MaxDepth)
	assert.Equal(t, "en-GB", speech2.VoiceLocale)
}

func TestManagerRejectsDuplicateSection(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	manager := NewManager(store)
	require.NoError(t, manager.RegisterSection(NewReaderSection()))
	assert.Error(t, manager.RegisterSection(NewReaderSection()))
}

func TestManagerSaveAllValidates(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	manager := NewManager(store)
	reader := NewReaderSection()
	require.NoError(t, manager.RegisterSection(reader))

	reader.Strategy = "chaotic"
	assert.Error(t, manager.SaveAll())
}

func TestReaderSectionSetData(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr bool
		check   func(t *testing.T, s *ReaderSection)
	}{
		{
			name: "full update from JSON-shaped data",
			data: map[string]interface{}{
				"max_depth":              float64(3),
				"max_top_level_comments": float64(5),
				"max_total_comments":     float64(30),
				"strategy":               "depth",
				"author_filters":         []interface{}{"spam_*", "*_shill"},
				"headless":               true,
			},
			check: func(t *testing.T, s *ReaderSection) {
				assert.Equal(t, 3, s.MaxDepth)
				assert.Equal(t, 5, s.MaxTopLevelComments)
				assert.Equal(t, 30, s.MaxTotalComments)
				assert.Equal(t, "depth", s.Strategy)
				assert.Equal(t, []string{"spam_*", "*_shill"}, s.AuthorFilters)
				assert.True(t, s.Headless)
			},
		},
		{
			name: "partial update keeps defaults",
			data: map[string]interface{}{"max_depth": 9},
			check: func(t *testing.T, s *ReaderSection) {
				assert.Equal(t, 9, s.MaxDepth)
				assert.Equal(t, defaultMaxTotalComments, s.MaxTotalComments)
				assert.Equal(t, defaultStrategy, s.Strategy)
			},
		},
		{
			name:    "wrong type for depth",
			data:    map[string]interface{}{"max_depth": "deep"},
			wantErr: true,
		},
		{
			name:    "wrong element type in filters",
			data:    map[string]interface{}{"author_filters": []interface{}{42}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewReaderSection()
			err := s.SetData(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestReaderSectionValidate(t *testing.T) {
	s := NewReaderSection()
	assert.NoError(t, s.Validate())

	s.MaxDepth = -1
	assert.Error(t, s.Validate())

	s.Reset()
	s.AuthorFilters = []string{"[unclosed"}
	assert.Error(t, s.Validate())

	s.Reset()
	assert.NoError(t, s.Validate())
}

func TestSpeechSectionRoundTrip(t *testing.T) {
	s := NewSpeechSection()
	require.NoError(t, s.SetData(map[string]interface{}{
		"voice_locale":    "en-AU",
		"selected_voices": []interface{}{"karen", "lee"},
		"unique_voices":   false,
		"speed":           1.5,
		"command":         "say",
		"args":            []interface{}{"-v", "{voice}", "-r", "{rate}"},
	}))

	other := NewSpeechSection()
	require.NoError(t, other.SetData(s.Data()))
	assert.Equal(t, "en-AU", other.VoiceLocale)
	assert.Equal(t, []string{"karen", "lee"}, other.SelectedVoices)
	assert.False(t, other.UniqueVoices)
	assert.Equal(t, 1.5, other.Speed)
	assert.Equal(t, "say", other.Command)
	assert.Equal(t, []string{"-v", "{voice}", "-r", "{rate}"}, other.Args)
}

func TestEnvOverridesApply(t *testing.T) {
	t.Setenv("THREADVOICE_MAX_DEPTH", "2")
	t.Setenv("THREADVOICE_STRATEGY", "breadth")
	t.Setenv("THREADVOICE_VOICES", "ava,ben")
	t.Setenv("THREADVOICE_SPEED", "1.25")
	t.Setenv("THREADVOICE_HEADLESS", "true")

	overrides, err := ParseEnv()
	require.NoError(t, err)

	reader := NewReaderSection()
	speech := NewSpeechSection()
	overrides.Apply(reader, speech)

	assert.Equal(t, 2, reader.MaxDepth)
	assert.Equal(t, "breadth", reader.Strategy)
	assert.True(t, reader.Headless)
	assert.Equal(t, []string{"ava", "ben"}, speech.SelectedVoices)
	assert.Equal(t, 1.25, speech.Speed)

	// Unset variables leave stored values alone.
	assert.Equal(t, defaultMaxTotalComments, reader.MaxTotalComments)
	assert.Equal(t, defaultVoiceLocale, speech.VoiceLocale)
}

package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/threadvoice/pkg/document"
	"github.com/entrhq/threadvoice/pkg/document/documenttest"
	"github.com/entrhq/threadvoice/pkg/expand"
	"github.com/entrhq/threadvoice/pkg/playback"
	"github.com/entrhq/threadvoice/pkg/speech/speechtest"
)

func newTestController(t *testing.T, tree *documenttest.Tree) (*Controller, *speechtest.ScriptedEngine) {
	t.Helper()
	engine := speechtest.New("ava", "ben")
	c := NewController(tree, tree, engine,
		WithExpandOptions(expand.WithSettleIntervals(0, 0)),
		WithSequencerOptions(playback.WithAdvanceDelay(time.Millisecond)),
	)
	return c, engine
}

func populatedTree() *documenttest.Tree {
	tree := documenttest.NewTree(document.Post{
		Title:    "Interesting thread",
		BodyHTML: "<p>the post body</p>",
	})
	a := tree.AddRoot(document.Node{ThingID: "t1_a", Author: "alice", Text: "first", Permalink: "/c/a"})
	tree.AddHiddenChild(a, document.Node{ThingID: "t1_b", Author: "bob", Text: "hidden reply", Permalink: "/c/b"})
	tree.AddRoot(document.Node{ThingID: "t1_m", Author: "AutoModerator", Text: "mod notice"})
	return tree
}

func defaultRequest() ExtractRequest {
	return ExtractRequest{
		MaxDepth:    4,
		MaxTopLevel: 10,
		MaxTotal:    20,
		Strategy:    "balanced",
		VoiceLocale: "en-US",
	}
}

func TestExtractCommentsEndToEnd(t *testing.T) {
	tree := populatedTree()
	c, _ := newTestController(t, tree)

	resp := c.ExtractComments(context.Background(), defaultRequest())

	require.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, 2, resp.Count, "hidden reply revealed, mod notice filtered")
	assert.True(t, resp.HasTitle)
	assert.True(t, resp.HasBody)
	assert.Equal(t, "Interesting thread", resp.Title)
	assert.Equal(t, 4, resp.TotalItems, "title + body + 2 comments")
	assert.Equal(t, 1, tree.Reveals())

	// Extraction metadata is visible through the state snapshot.
	state := c.State()
	assert.Equal(t, 2, state.Count)
	assert.Equal(t, 4, state.Playback.QueueLength)
	assert.False(t, state.IsExtracting)
}

func TestExtractCommentsEmptyDocument(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	c, _ := newTestController(t, tree)

	resp := c.ExtractComments(context.Background(), defaultRequest())

	// "No comments found" is a zero-count success, not a hard error.
	require.True(t, resp.Success)
	assert.Equal(t, 0, resp.Count)
	assert.False(t, resp.HasTitle)
	assert.Equal(t, 0, resp.TotalItems)
}

func TestTransportThroughController(t *testing.T) {
	tree := populatedTree()
	c, engine := newTestController(t, tree)

	resp := c.ExtractComments(context.Background(), defaultRequest())
	require.True(t, resp.Success)

	play := c.Play()
	require.True(t, play.Success)
	assert.True(t, play.State.IsPlaying)
	assert.Equal(t, "Interesting thread", engine.Last().Text)
	assert.Equal(t, "en-US", engine.Last().Locale)

	next := c.Next()
	require.True(t, next.Success)
	assert.Equal(t, 1, next.State.Cursor)

	stop := c.Stop()
	require.True(t, stop.Success)
	assert.Equal(t, 0, stop.State.Cursor)
	assert.Equal(t, "", tree.ActiveHighlight())
}

func TestTransportWithoutContent(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	c, _ := newTestController(t, tree)

	resp := c.Play()
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestSetSpeedAndVoicePolicy(t *testing.T) {
	tree := populatedTree()
	c, _ := newTestController(t, tree)

	resp := c.SetSpeed(7.0)
	assert.True(t, resp.Success)
	assert.Equal(t, 2.0, resp.State.Speed, "speed clamped")

	resp = c.ToggleUniqueVoices(false)
	assert.True(t, resp.Success)
	assert.False(t, resp.State.UniqueVoices)

	resp = c.SetVoiceLocale("en-GB")
	assert.True(t, resp.Success)
	assert.Equal(t, "en-GB", resp.State.Locale)
}

func TestStopExtractionWhenIdle(t *testing.T) {
	tree := populatedTree()
	c, _ := newTestController(t, tree)

	resp := c.StopExtraction()
	assert.True(t, resp.Success)
	assert.False(t, resp.Stopped)

	progress := c.ExtractionProgress()
	assert.False(t, progress.IsExtracting)
	assert.False(t, progress.CanStop)
}

func TestCleanupResetsSession(t *testing.T) {
	tree := populatedTree()
	c, engine := newTestController(t, tree)

	require.True(t, c.ExtractComments(context.Background(), defaultRequest()).Success)
	require.True(t, c.Play().Success)

	c.Cleanup()

	state := c.State()
	assert.Equal(t, 0, state.Count)
	assert.Equal(t, 0, state.Playback.QueueLength)
	assert.False(t, state.Playback.IsPlaying)
	assert.Equal(t, "", tree.ActiveHighlight())
	assert.GreaterOrEqual(t, engine.Cancels(), 1)
}

func TestDispatch(t *testing.T) {
	tree := populatedTree()
	c, _ := newTestController(t, tree)

	payload, err := json.Marshal(defaultRequest())
	require.NoError(t, err)

	resp, err := c.Dispatch(context.Background(), ActionExtractComments, payload)
	require.NoError(t, err)
	extractResp, ok := resp.(ExtractResponse)
	require.True(t, ok)
	assert.True(t, extractResp.Success)

	resp, err = c.Dispatch(context.Background(), ActionGetState, nil)
	require.NoError(t, err)
	stateResp, ok := resp.(StateResponse)
	require.True(t, ok)
	assert.Equal(t, 2, stateResp.Count)

	resp, err = c.Dispatch(context.Background(), ActionSetSpeed, json.RawMessage(`{"speed": 1.5}`))
	require.NoError(t, err)
	speedResp, ok := resp.(TransportResponse)
	require.True(t, ok)
	assert.Equal(t, 1.5, speedResp.State.Speed)

	_, err = c.Dispatch(context.Background(), "selfDestruct", nil)
	require.Error(t, err)

	_, err = c.Dispatch(context.Background(), ActionSetSpeed, json.RawMessage(`{not json`))
	require.Error(t, err)
}

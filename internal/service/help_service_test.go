package service

import (
	"codepath_backend/internal/config"
	"codepath_backend/internal/util"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpAsk(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A closure captures variables."}}]}`))
	}))
	defer srv.Close()

	s := NewHelpService(config.AIConfig{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", Model: "tutor"})
	answer, err := s.Ask(context.Background(), HelpRequest{Question: " What is a closure? ", Context: "Closures"})
	require.NoError(t, err)
	assert.Equal(t, "A closure captures variables.", answer.Answer)

	assert.Equal(t, "tutor", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "[Current topic: Closures]\n\nWhat is a closure?", got.Messages[1].Content)
}

func TestHelpAsk_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewHelpService(config.AIConfig{}).Ask(ctx, HelpRequest{Question: "hi"})
	assert.ErrorIs(t, err, util.ErrAIUnavailable)

	_, err = NewHelpService(config.AIConfig{BaseURL: "http://unused"}).Ask(ctx, HelpRequest{Question: "   "})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer failing.Close()
	_, err = NewHelpService(config.AIConfig{BaseURL: failing.URL}).Ask(ctx, HelpRequest{Question: "hi"})
	assert.ErrorIs(t, err, util.ErrAIUnavailable)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer empty.Close()
	_, err = NewHelpService(config.AIConfig{BaseURL: empty.URL}).Ask(ctx, HelpRequest{Question: "hi"})
	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

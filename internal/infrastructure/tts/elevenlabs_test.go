package tts

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/DrugRx-Intelligence/internal/config"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

func newTestSynthesizer(t *testing.T, handler http.HandlerFunc) Synthesizer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSynthesizer(config.TTSConfig{
		APIKey:  "test-key",
		VoiceID: "voice-1",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, logging.NewNopLogger())
}

func TestSynthesizeSendsKeyAndVoice(t *testing.T) {
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))
		assert.Equal(t, "/text-to-speech/voice-1", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "eleven_multilingual_v2")
		w.Write([]byte("mp3-bytes"))
	})

	audio, err := synth.Synthesize(context.Background(), "Warfarin and ibuprofen interact.")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.True(t, synth.Enabled())
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent for empty text")
	})

	_, err := synth.Synthesize(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(err))
}

func TestSynthesizeUpstreamFailure(t *testing.T) {
	synth := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := synth.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetCode(err))
}

func TestDisabledSynthesizer(t *testing.T) {
	synth := NewSynthesizer(config.TTSConfig{}, logging.NewNopLogger())
	assert.False(t, synth.Enabled())

	_, err := synth.Synthesize(context.Background(), "hello")
	require.Error(t, err)
}

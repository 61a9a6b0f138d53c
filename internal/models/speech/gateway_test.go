package speech

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasioon/search-gateway/internal/config"
	apperrors "github.com/kasioon/search-gateway/internal/errors"
	"github.com/kasioon/search-gateway/internal/types"
)

func TestTranscribeRejectsUnsupportedExtension(t *testing.T) {
	g, err := NewGateway(&config.Config{Speech: &config.SpeechConfig{APIKey: "test-key"}}, nil)
	require.NoError(t, err)

	_, err = g.Transcribe(context.Background(), strings.NewReader("data"), "note.txt", types.LanguageArabic)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnsupportedMedia, appErr.Code)
}

func TestTranscribeErrorsWhenGatewayNotConfigured(t *testing.T) {
	g, err := NewGateway(&config.Config{}, nil)
	require.NoError(t, err)

	_, err = g.Transcribe(context.Background(), strings.NewReader("data"), "note.mp3", types.LanguageArabic)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrExternalUnavailable, appErr.Code)
}

func TestNewGatewayDefaultsToWhisperModel(t *testing.T) {
	g, err := NewGateway(&config.Config{Speech: &config.SpeechConfig{APIKey: "test-key"}}, nil)
	require.NoError(t, err)

	gw, ok := g.(*Gateway)
	require.True(t, ok)
	assert.Equal(t, "whisper-1", gw.model)
}

func TestNewGatewayUsesConfiguredModel(t *testing.T) {
	g, err := NewGateway(&config.Config{Speech: &config.SpeechConfig{APIKey: "test-key", Model: "whisper-large"}}, nil)
	require.NoError(t, err)

	gw, ok := g.(*Gateway)
	require.True(t, ok)
	assert.Equal(t, "whisper-large", gw.model)
}

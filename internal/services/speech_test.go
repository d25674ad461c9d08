package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
)

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return s.text, s.err
}

func TestSynthesizeWithoutCredentials(t *testing.T) {
	svc := NewSpeechService(false, nil, zap.NewNop())
	audio, err := svc.Synthesize(context.Background(), "hello", "en-IN", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if audio != nil {
		t.Error("expected nil audio when no credentials are configured")
	}
}

func TestTranscribeUsesFallback(t *testing.T) {
	svc := NewSpeechService(false, stubTranscriber{text: "hello world"}, zap.NewNop())
	got := svc.Transcribe(context.Background(), []byte{1, 2, 3}, "en-IN")
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestTranscribeFallbackErrorYieldsSentinel(t *testing.T) {
	svc := NewSpeechService(false, stubTranscriber{err: errors.New("boom")}, zap.NewNop())
	got := svc.Transcribe(context.Background(), []byte{1}, "en-IN")
	if !strings.HasPrefix(got, models.ErrorSTTPrefix) {
		t.Errorf("expected sentinel, got %q", got)
	}
}

func TestTranscribeNoRecognizerYieldsSentinel(t *testing.T) {
	svc := NewSpeechService(false, nil, zap.NewNop())
	got := svc.Transcribe(context.Background(), []byte{1}, "en-IN")
	if !strings.HasPrefix(got, models.ErrorSTTPrefix) {
		t.Errorf("expected sentinel, got %q", got)
	}
}

func TestEstimateDuration(t *testing.T) {
	if got := EstimateDuration(""); got != 1.0 {
		t.Errorf("empty text should floor at 1s, got %v", got)
	}
	if got := EstimateDuration("ab"); got != 1.0 {
		t.Errorf("short text should floor at 1s, got %v", got)
	}
	if got := EstimateDuration(strings.Repeat("x", 140)); got != 10.0 {
		t.Errorf("140 chars should be 10s, got %v", got)
	}
}

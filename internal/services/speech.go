package services

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/models"
)

// audioTranscriber is the fallback transcription path when the cloud speech
// API is unavailable. GeminiGenerator satisfies it.
type audioTranscriber interface {
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// SpeechService wraps the cloud text-to-speech and speech-to-text APIs.
// Synthesis returns nil bytes when no provider is available; transcription
// degrades to the generative model and finally to a sentinel string.
type SpeechService struct {
	hasCredentials bool
	fallback       audioTranscriber
	logger         *zap.Logger
}

func NewSpeechService(hasCredentials bool, fallback audioTranscriber, logger *zap.Logger) *SpeechService {
	return &SpeechService{
		hasCredentials: hasCredentials,
		fallback:       fallback,
		logger:         logger,
	}
}

// Synthesize converts text to MP3 bytes. A nil, nil return means no synthesis
// provider is configured.
func (s *SpeechService) Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error) {
	if !s.hasCredentials {
		s.logger.Info("synthesis skipped, no cloud credentials")
		return nil, nil
	}
	if languageCode == "" {
		languageCode = "en-IN"
	}

	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}
	defer client.Close()

	voice := &texttospeechpb.VoiceSelectionParams{
		LanguageCode: languageCode,
		SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
	}
	if voiceName != "" {
		voice = &texttospeechpb.VoiceSelectionParams{
			Name:         voiceName,
			LanguageCode: languageCode,
		}
	}

	resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: voice,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("TTS synthesis failed: %w", err)
	}

	return resp.AudioContent, nil
}

// Transcribe converts audio bytes to text. Failures come back as a string
// with the ERROR_STT sentinel prefix, never as an error.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, language string) string {
	if language == "" {
		language = "en-IN"
	}

	if s.hasCredentials {
		text, err := s.cloudRecognize(ctx, audio, language)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			s.logger.Warn("cloud STT failed", zap.Error(err))
		}
	}

	if s.fallback != nil {
		text, err := s.fallback.TranscribeAudio(ctx, audio, "audio/webm")
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			s.logger.Warn("fallback STT failed", zap.Error(err))
			return fmt.Sprintf("%s %v", models.ErrorSTTPrefix, err)
		}
	}

	return models.ErrorSTTPrefix + " no speech recognizer available"
}

func (s *SpeechService) cloudRecognize(ctx context.Context, audio []byte, language string) (string, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			LanguageCode:    language,
			SampleRateHertz: 16000,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	return strings.Join(parts, " "), nil
}

// EstimateDuration guesses narration length from character count at roughly
// 14 characters per second, floored at one second. Drives avatar timing only.
func EstimateDuration(text string) float64 {
	chars := len(text)
	if chars < 1 {
		chars = 1
	}
	seconds := float64(chars) / 14.0
	if seconds < 1.0 {
		return 1.0
	}
	return seconds
}

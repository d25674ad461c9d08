package models

// ErrorSTTPrefix marks a failed transcription. Returned in the response body
// rather than as an HTTP error so the caller can show it inline.
const ErrorSTTPrefix = "ERROR_STT:"

type NarrateRequest struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Voice        string `json:"voice,omitempty"`
}

type TranscribeRequest struct {
	AudioB64 string `json:"audio_b64"`
	Language string `json:"language"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type ExportRequest struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Actions []string `json:"actions"`
}

// ExtensionContentRequest seeds a session with page content pushed by the
// companion browser extension.
type ExtensionContentRequest struct {
	Content   string `json:"content"`
	URL       string `json:"url"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language,omitempty"`
	Style     string `json:"style,omitempty"`
}

package models

// Voice describes one synthesis voice offered by the TTS provider.
type Voice struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Accent      string `json:"accent,omitempty"`
}

// Package tts synthesizes podcast audio through the ElevenLabs API.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sci-cast/internal/errs"
	"sci-cast/internal/models"
	"sci-cast/internal/normalize"
)

// DefaultBaseURL is the production ElevenLabs endpoint.
const DefaultBaseURL = "https://api.elevenlabs.io"

const modelID = "eleven_monolingual_v1"

// DefaultVoiceID is used when the caller does not pick a voice.
const DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

// Client calls the ElevenLabs REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient builds an ElevenLabs client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize normalizes the script for speech and converts it to MP3
// bytes with the given voice. The raw provider status and body are
// preserved on failure so callers can relay them.
func (c *Client) Synthesize(ctx context.Context, script, voiceID string) ([]byte, error) {
	if script == "" {
		return nil, errs.Validation("no script provided")
	}
	if c.apiKey == "" {
		return nil, &errs.ProviderError{Provider: "elevenlabs", Err: fmt.Errorf("no API credential configured")}
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	body, err := json.Marshal(speechRequest{
		Text:    normalize.Normalize(script),
		ModelID: modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build speech request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errs.ProviderError{Provider: "elevenlabs", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &errs.ProviderError{
			Provider:   "elevenlabs",
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio stream: %w", err)
	}
	return audio, nil
}

type voicesResponse struct {
	Voices []models.Voice `json:"voices"`
}

// Voices lists the voices available to the account. Any failure, from a
// missing credential to a provider error, degrades to the built-in
// default list so the voice picker always renders.
func (c *Client) Voices(ctx context.Context) []models.Voice {
	if c.apiKey == "" {
		return DefaultVoices()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return DefaultVoices()
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DefaultVoices()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DefaultVoices()
	}

	var out voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || len(out.Voices) == 0 {
		return DefaultVoices()
	}
	return out.Voices
}

// Healthy reports whether the voices endpoint answers with the
// configured credential.
func (c *Client) Healthy(ctx context.Context) bool {
	if c.apiKey == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return false
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// DefaultVoices is the curated fallback voice list.
func DefaultVoices() []models.Voice {
	return []models.Voice{
		{VoiceID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Category: "premade", Description: "Calm and professional female voice"},
		{VoiceID: "29vD33N1CtxCmqQRPOHJ", Name: "Drew", Category: "premade", Description: "Confident male voice"},
		{VoiceID: "2EiwWnXFnvU5JabPnv8n", Name: "Clyde", Category: "premade", Description: "Warm male voice"},
		{VoiceID: "5Q0t7uMcjvnagumLfvZi", Name: "Paul", Category: "premade", Description: "Authoritative male voice"},
		{VoiceID: "AZnzlk1XvdvUeBnXmlld", Name: "Domi", Category: "premade", Description: "Strong female voice"},
		{VoiceID: "CYw3kZ02Hs0563khs1Fj", Name: "Dave", Category: "premade", Description: "Conversational male voice"},
	}
}

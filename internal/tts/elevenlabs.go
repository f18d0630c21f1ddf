package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ElevenLabsClient synthesizes speech over the ElevenLabs HTTP streaming
// endpoint, as an alternative to the Deepgram websocket Client. Output is
// the same 48 kHz 16-bit mono PCM the Speaker expects.
type ElevenLabsClient struct {
	HTTPClient *http.Client
	apiKey     string
	voiceID    string
	model      string
}

func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		// No overall timeout; the response body streams for the length
		// of the audio. Cancellation comes from the request context.
		HTTPClient: &http.Client{},
		apiKey:     apiKey,
		voiceID:    voiceID,
		model:      "eleven_flash_v2_5",
	}
}

// StreamPCM48k converts text to audio. The pcm channel closes when the
// synthesis stream ends; at most one error is delivered before close.
func (e *ElevenLabsClient) StreamPCM48k(ctx context.Context, text string) (<-chan []byte, <-chan error) {
	pcmCh := make(chan []byte, 4096)
	errCh := make(chan error, 1)

	go func() {
		defer close(pcmCh)
		defer close(errCh)

		if e.apiKey == "" || e.voiceID == "" {
			errCh <- fmt.Errorf("tts: elevenlabs key or voice id missing")
			return
		}
		if text == "" {
			return
		}
		if err := e.stream(ctx, text, pcmCh); err != nil {
			errCh <- err
		}
	}()
	return pcmCh, errCh
}

func (e *ElevenLabsClient) stream(ctx context.Context, text string, pcmCh chan<- []byte) error {
	u := url.URL{
		Scheme: "https",
		Host:   "api.elevenlabs.io",
		Path:   "/v1/text-to-speech/" + e.voiceID + "/stream",
	}
	q := u.Query()
	q.Set("output_format", "pcm_48000")
	q.Set("optimize_streaming_latency", "2")
	u.RawQuery = q.Encode()

	payload := map[string]any{
		"model_id": e.model,
		"text":     text,
		"voice_settings": map[string]any{
			"stability":        0.4,
			"similarity_boost": 0.7,
		},
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tts: elevenlabs request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts: elevenlabs stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tts: elevenlabs status=%d body=%s", resp.StatusCode, string(b))
	}

	buf := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case pcmCh <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return fmt.Errorf("tts: elevenlabs read: %w", rerr)
		}
	}
}

var _ Streamer = (*ElevenLabsClient)(nil)

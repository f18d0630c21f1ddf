package tts

import (
	"context"
	"fmt"
)

// Streamer converts text into a stream of 48 kHz PCM chunks.
type Streamer interface {
	StreamPCM48k(ctx context.Context, text string) (<-chan []byte, <-chan error)
}

// Player drains a PCM stream to an output device, returning once
// playback completes.
type Player interface {
	Play(ctx context.Context, pcm <-chan []byte) error
}

// Speaker couples synthesis with device playback. Speak blocks until
// the whole reply has been played.
type Speaker struct {
	streamer Streamer
	player   Player
}

func NewSpeaker(streamer Streamer, player Player) *Speaker {
	return &Speaker{streamer: streamer, player: player}
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	pcmCh, errCh := s.streamer.StreamPCM48k(ctx, text)
	playErr := s.player.Play(ctx, pcmCh)

	// errCh is closed once the synthesis goroutine finishes, which is
	// guaranteed after pcmCh drains.
	var streamErr error
	for err := range errCh {
		if streamErr == nil {
			streamErr = err
		}
	}
	if streamErr != nil {
		return fmt.Errorf("tts: synthesis: %w", streamErr)
	}
	if playErr != nil {
		return fmt.Errorf("tts: playback: %w", playErr)
	}
	return nil
}

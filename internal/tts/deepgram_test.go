package tts

import (
	"context"
	"testing"
	"time"
)

func TestStreamPCM48k_NoKeyErrors(t *testing.T) {
	c := NewClient("", "")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	pcmCh, errCh := c.StreamPCM48k(ctx, "hello")
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected error when api key missing")
		}
	case <-pcmCh:
	case <-time.After(300 * time.Millisecond):
		t.Fatalf("timeout waiting for error")
	}
}

func TestStreamPCM48k_EmptyTextNoWork(t *testing.T) {
	c := NewClient("key", "")
	pcmCh, errCh := c.StreamPCM48k(context.Background(), "")
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			t.Fatalf("unexpected error for empty text: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for stream close")
	}
	if _, ok := <-pcmCh; ok {
		t.Fatalf("expected no audio for empty text")
	}
}

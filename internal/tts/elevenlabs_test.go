package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func redirectTo(srv *httptest.Server) *http.Client {
	return &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		req.URL.Scheme = "http"
		req.URL.Host = srv.Listener.Addr().String()
		return http.DefaultTransport.RoundTrip(req)
	})}
}

func TestElevenLabsStreamPCM48k_NoKey(t *testing.T) {
	c := NewElevenLabsClient("", "")
	pcmCh, errCh := c.StreamPCM48k(context.Background(), "hello")
	for range pcmCh {
	}
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected error with missing key")
		}
	case <-time.After(time.Second):
		t.Fatal("no error delivered")
	}
}

func TestElevenLabsStreamPCM48k_EmptyTextNoWork(t *testing.T) {
	c := NewElevenLabsClient("key", "voice")
	pcmCh, errCh := c.StreamPCM48k(context.Background(), "")
	for range pcmCh {
		t.Fatal("audio for empty text")
	}
	if err, ok := <-errCh; ok && err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestElevenLabsStreamDeliversAudio(t *testing.T) {
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		_, _ = w.Write(make([]byte, 9000))
	}))
	defer srv.Close()

	c := NewElevenLabsClient("key", "voice-1")
	c.HTTPClient = redirectTo(srv)

	pcmCh, errCh := c.StreamPCM48k(context.Background(), "hello there")
	total := 0
	for chunk := range pcmCh {
		total += len(chunk)
	}
	if err, ok := <-errCh; ok && err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if total != 9000 {
		t.Fatalf("received %d bytes, want 9000", total)
	}
	if gotKey != "key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotPath != "/v1/text-to-speech/voice-1/stream" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestElevenLabsStreamReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	c := NewElevenLabsClient("key", "voice-1")
	c.HTTPClient = redirectTo(srv)

	pcmCh, errCh := c.StreamPCM48k(context.Background(), "hello")
	for range pcmCh {
	}
	if err := <-errCh; err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

package transcript

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultSilenceTimeout delimits an utterance: once no new transcript
// text arrives for this long, the phrase is considered complete.
const DefaultSilenceTimeout = 5 * time.Second

// MaxPhraseDuration is the hard cap on a single phrase. A speaker who
// never pauses still produces an utterance event at this boundary.
const MaxPhraseDuration = 15 * time.Second

// Service streams caller audio to the hosted recognizer over a
// websocket and emits one utterance event per completed phrase.
type Service struct {
	apiKey  string
	silence time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool

	utterances chan string
	audio      chan []byte
	errCh      chan error
	stopCh     chan struct{}
	closeOnce  sync.Once

	// phrase accumulation
	accMu        sync.Mutex
	latest       string
	committed    string
	paused       bool
	phraseStart  time.Time
	silenceTimer *time.Timer
	capTimer     *time.Timer
}

// Recognizer stream message types.
type beginMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expires_at"`
}

type turnMessage struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
}

type terminationMessage struct {
	Type                   string  `json:"type"`
	AudioDurationSeconds   float64 `json:"audio_duration_seconds"`
	SessionDurationSeconds float64 `json:"session_duration_seconds"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewService creates a transcription service. A zero silence timeout
// selects DefaultSilenceTimeout.
func NewService(apiKey string, silence time.Duration) *Service {
	if silence <= 0 {
		silence = DefaultSilenceTimeout
	}
	return &Service{
		apiKey:     apiKey,
		silence:    silence,
		utterances: make(chan string, 10),
		audio:      make(chan []byte, 1000),
		errCh:      make(chan error, 1),
		stopCh:     make(chan struct{}),
	}
}

// Connect establishes the websocket to the recognizer and starts the
// reader and audio-writer goroutines.
func (s *Service) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	if s.apiKey == "" {
		return fmt.Errorf("transcript: API key is empty")
	}

	params := url.Values{}
	params.Set("sample_rate", "16000")
	params.Set("format_turns", "false")
	params.Set("encoding", "pcm_s16le")
	wsURL := fmt.Sprintf("wss://streaming.assemblyai.com/v3/ws?%s", params.Encode())

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	headers := map[string][]string{"Authorization": {s.apiKey}}

	conn, resp, err := dialer.Dial(wsURL, headers)
	if err != nil {
		if resp != nil {
			log.Printf("[transcript] connection refused with status %d", resp.StatusCode)
		}
		return fmt.Errorf("transcript: connect: %w", err)
	}

	s.conn = conn
	s.connected = true
	go s.readLoop()
	go s.writeLoop()

	log.Println("[transcript] connected to streaming recognizer")
	return nil
}

// Start connects if needed and blocks delivering utterance events to
// onUtterance, one at a time, until stop fires or the stream fails.
// Callbacks run on the caller's goroutine, so a session never sees two
// utterances at once.
func (s *Service) Start(stop <-chan struct{}, onUtterance func(string)) error {
	if err := s.Connect(); err != nil {
		return err
	}
	for {
		select {
		case <-stop:
			return nil
		case <-s.stopCh:
			return nil
		case err := <-s.errCh:
			return err
		case text := <-s.utterances:
			onUtterance(text)
		}
	}
}

// Pause suppresses utterance delivery. Audio keeps flowing to the
// recognizer; completed phrases are committed but not emitted. Calling
// Pause while paused is a no-op.
func (s *Service) Pause() {
	s.accMu.Lock()
	s.paused = true
	s.accMu.Unlock()
}

// Resume re-enables utterance delivery. Idempotent.
func (s *Service) Resume() {
	s.accMu.Lock()
	s.paused = false
	s.accMu.Unlock()
}

// SendAudio queues one PCM chunk for the recognizer. Drops the chunk
// when the outbound buffer is full rather than blocking the audio feed.
func (s *Service) SendAudio(pcm []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return fmt.Errorf("transcript: not connected")
	}
	select {
	case s.audio <- pcm:
	default:
		log.Println("[transcript] audio buffer full, dropping chunk")
	}
	return nil
}

// Close terminates the stream and releases the connection. Safe to call
// more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.accMu.Lock()
		if s.silenceTimer != nil {
			s.silenceTimer.Stop()
			s.silenceTimer = nil
		}
		if s.capTimer != nil {
			s.capTimer.Stop()
			s.capTimer = nil
		}
		s.accMu.Unlock()

		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.WriteJSON(map[string]string{"type": "Terminate"})
			_ = s.conn.Close()
			s.conn = nil
		}
		s.connected = false
		s.mu.Unlock()
		log.Println("[transcript] connection closed")
	})
	return nil
}

func (s *Service) readLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.fail(fmt.Errorf("transcript: read: %w", err))
			return
		}
		s.processMessage(message)
	}
}

func (s *Service) writeLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		case pcm := <-s.audio:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn == nil {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
				s.fail(fmt.Errorf("transcript: write audio: %w", err))
				return
			}
		}
	}
}

func (s *Service) processMessage(message []byte) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &base); err != nil {
		log.Printf("[transcript] malformed message: %v", err)
		return
	}
	switch base.Type {
	case "Begin":
		var msg beginMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return
		}
		log.Printf("[transcript] stream began: id=%s expires=%s",
			msg.ID, time.Unix(msg.ExpiresAt, 0).Format(time.RFC3339))
	case "Turn":
		var msg turnMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return
		}
		if msg.Transcript != "" {
			s.observeTranscript(msg.Transcript)
		}
	case "Termination":
		var msg terminationMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return
		}
		log.Printf("[transcript] stream terminated: audio=%.2fs session=%.2fs",
			msg.AudioDurationSeconds, msg.SessionDurationSeconds)
		s.finalize()
	case "Error":
		var msg errorMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return
		}
		s.fail(fmt.Errorf("transcript: recognizer: %s", msg.Error))
	default:
		log.Printf("[transcript] unknown message type %q", base.Type)
	}
}

// observeTranscript records the growing phrase and re-arms the silence
// timer. The first text of a phrase also arms the hard duration cap.
func (s *Service) observeTranscript(text string) {
	s.accMu.Lock()
	defer s.accMu.Unlock()

	s.latest = text
	if s.phraseStart.IsZero() {
		s.phraseStart = time.Now()
		if s.capTimer == nil {
			s.capTimer = time.AfterFunc(MaxPhraseDuration, s.finalize)
		} else {
			s.capTimer.Reset(MaxPhraseDuration)
		}
	}
	if s.silenceTimer == nil {
		s.silenceTimer = time.AfterFunc(s.silence, s.finalize)
	} else {
		s.silenceTimer.Stop()
		s.silenceTimer.Reset(s.silence)
	}
}

// finalize commits the pending phrase and emits the delta since the
// last committed text. While paused the delta is committed but dropped.
func (s *Service) finalize() {
	select {
	case <-s.stopCh:
		return
	default:
	}

	s.accMu.Lock()
	delta := phraseDelta(s.latest, s.committed)
	s.committed = s.latest
	s.phraseStart = time.Time{}
	if s.silenceTimer != nil {
		s.silenceTimer.Stop()
	}
	if s.capTimer != nil {
		s.capTimer.Stop()
	}
	paused := s.paused
	s.accMu.Unlock()

	if delta == "" {
		return
	}
	if paused {
		log.Printf("[transcript] paused, dropping utterance %q", delta)
		return
	}
	select {
	case <-s.stopCh:
	case s.utterances <- delta:
	}
}

// phraseDelta extracts the new words in latest beyond the committed
// prefix. Recognizer turns restate the full phrase, so the common case
// is a plain prefix strip.
func phraseDelta(latest, committed string) string {
	delta := strings.TrimSpace(strings.TrimPrefix(latest, committed))
	if delta == "" && committed != "" {
		if idx := strings.LastIndex(latest, committed); idx >= 0 {
			delta = strings.TrimSpace(latest[idx+len(committed):])
		}
	}
	return delta
}

func (s *Service) fail(err error) {
	select {
	case s.errCh <- err:
	default:
	}
}

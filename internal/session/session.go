package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/solpercival/Thoth/internal/convo"
)

// Transcriber is the utterance source for one call. Connect is called
// synchronously at session start; Start blocks delivering events until
// the stop channel fires or the stream fails.
type Transcriber interface {
	Connect() error
	Start(stop <-chan struct{}, onUtterance func(string)) error
	Pause()
	Resume()
	Close() error
}

// Synthesizer speaks one reply, blocking until playback completes.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Dialogue is the conversation engine consuming utterances.
type Dialogue interface {
	Process(ctx context.Context, utterance string) (string, error)
	ResetContext()
	EndRequested() bool
}

const apologyReply = "Sorry, I had a problem - let's start over."

// Session owns the per-call resources and routes utterance events to
// the dialogue engine, one at a time.
type Session struct {
	callID      string
	callerPhone string
	startedAt   time.Time

	transcriber Transcriber
	synth       Synthesizer
	dialogue    Dialogue

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func New(callID, callerPhone string, t Transcriber, synth Synthesizer, d Dialogue) *Session {
	return &Session{
		callID:      callID,
		callerPhone: callerPhone,
		startedAt:   time.Now(),
		transcriber: t,
		synth:       synth,
		dialogue:    d,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (s *Session) CallID() string          { return s.callID }
func (s *Session) CallerPhone() string     { return s.callerPhone }
func (s *Session) StartedAt() time.Time    { return s.startedAt }
func (s *Session) Uptime() time.Duration   { return time.Since(s.startedAt) }
func (s *Session) Done() <-chan struct{}   { return s.done }

// Begin connects the audio stream. It runs synchronously so the caller
// learns immediately whether the call can be serviced.
func (s *Session) Begin() error { return s.transcriber.Connect() }

// Run speaks the greeting and then blocks consuming utterances until
// Stop is called or the transcriber terminates.
func (s *Session) Run() {
	defer close(s.done)
	defer func() { _ = s.transcriber.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.speak(ctx, convo.OpeningPrompt)

	if err := s.transcriber.Start(s.stop, func(text string) { s.handleUtterance(ctx, text) }); err != nil {
		log.Printf("[session %s] transcriber failed: %v", s.callID, err)
	}
}

// Stop signals cooperative shutdown. Idempotent.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// forceRelease drops the audio resources of a session that did not
// shut down within the grace period.
func (s *Session) forceRelease() { _ = s.transcriber.Close() }

// handleUtterance runs one utterance through the dialogue. The
// transcriber stays paused for the duration, which is what serializes
// utterance processing within the session.
func (s *Session) handleUtterance(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.transcriber.Pause()
	defer s.transcriber.Resume()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[session %s] handler panic: %v", s.callID, r)
			s.speak(ctx, apologyReply)
			s.dialogue.ResetContext()
		}
	}()

	log.Printf("[session %s] utterance: %q", s.callID, text)
	reply, err := s.dialogue.Process(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("[session %s] handler error: %v", s.callID, err)
		s.speak(ctx, apologyReply)
		s.dialogue.ResetContext()
		return
	}
	if reply != "" {
		s.speak(ctx, reply)
	}
	if s.dialogue.EndRequested() {
		s.Stop()
	}
}

// speak drops the reply on synthesis failure; a lost reply is better
// than a dead session.
func (s *Session) speak(ctx context.Context, text string) {
	if err := s.synth.Speak(ctx, text); err != nil {
		log.Printf("[session %s] synthesis failed, dropping reply: %v", s.callID, err)
	}
}

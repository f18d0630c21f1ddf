package audio

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

const (
	sampleRate = 48000
	channels   = 1
)

// Sink plays 48 kHz 16-bit mono PCM on a named output device. An
// unknown device name falls back to the platform default; device
// selection never fails a call.
type Sink struct {
	deviceName string
}

func NewSink(deviceName string) *Sink {
	return &Sink{deviceName: deviceName}
}

// Play drains pcm to the device and returns once everything queued has
// been played, plus a short silence tail so the last samples are not
// clipped.
func (s *Sink) Play(ctx context.Context, pcm <-chan []byte) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		drain(pcm)
		return fmt.Errorf("audio: init context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = channels
	cfg.SampleRate = sampleRate
	if id := s.selectDevice(mctx); id != nil {
		cfg.Playback.DeviceID = id.Pointer()
	}

	var (
		mu     sync.Mutex
		queue  []byte
		closed bool
	)
	done := make(chan struct{})
	var doneOnce sync.Once

	// 100ms of silence after the stream drains.
	tailRemaining := sampleRate * 2 / 10

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			mu.Lock()
			n := copy(out, queue)
			queue = queue[n:]
			empty := closed && len(queue) == 0
			mu.Unlock()
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if empty {
				tailRemaining -= len(out) - n
				if tailRemaining <= 0 {
					doneOnce.Do(func() { close(done) })
				}
			}
		},
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		drain(pcm)
		return fmt.Errorf("audio: init device: %w", err)
	}
	defer device.Uninit()

	go func() {
		for chunk := range pcm {
			mu.Lock()
			queue = append(queue, chunk...)
			mu.Unlock()
		}
		mu.Lock()
		closed = true
		mu.Unlock()
	}()

	if err := device.Start(); err != nil {
		drain(pcm)
		return fmt.Errorf("audio: start device: %w", err)
	}

	select {
	case <-ctx.Done():
		drain(pcm)
		return ctx.Err()
	case <-done:
		return nil
	}
}

// selectDevice resolves the configured device name against the playback
// devices the backend reports. Nil means the platform default.
func (s *Sink) selectDevice(mctx *malgo.AllocatedContext) *malgo.DeviceID {
	if s.deviceName == "" {
		return nil
	}
	infos, err := mctx.Devices(malgo.Playback)
	if err != nil {
		log.Printf("[audio] device enumeration failed, using default output: %v", err)
		return nil
	}
	want := strings.ToLower(s.deviceName)
	for i := range infos {
		if strings.Contains(strings.ToLower(infos[i].Name()), want) {
			id := infos[i].ID
			return &id
		}
	}
	log.Printf("[audio] output device %q not found, using default", s.deviceName)
	return nil
}

func drain(pcm <-chan []byte) {
	go func() {
		for range pcm {
		}
	}()
}

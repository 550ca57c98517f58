package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Audio implements AudioChannelPort for terminal sessions. The salient
// cue is the terminal bell; the background track exists only as a
// volume level so the duck-and-restore choreography still runs.
type Audio struct {
	mu        sync.Mutex
	out       io.Writer
	volume    float64
	busyUntil time.Time
	cueFor    time.Duration
}

// NewAudio creates an audio channel writing the bell to out. cueFor is
// how long a cue counts as still sounding.
func NewAudio(out io.Writer, cueFor time.Duration) *Audio {
	return &Audio{out: out, cueFor: cueFor}
}

// StartBackground starts the background track at the given volume.
func (a *Audio) StartBackground(ctx context.Context, volume float64) error {
	return a.SetBackgroundVolume(volume)
}

// SetBackgroundVolume sets the background volume, clamped to 0..1.
func (a *Audio) SetBackgroundVolume(volume float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = clampVolume(volume)
	return nil
}

// FadeBackgroundVolume ramps the background volume to target in
// discrete steps over d.
func (a *Audio) FadeBackgroundVolume(target float64, d time.Duration, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("fade steps must be positive, got %d", steps)
	}

	a.mu.Lock()
	current := a.volume
	a.mu.Unlock()

	delta := (target - current) / float64(steps)
	pause := d / time.Duration(steps)
	for i := 0; i < steps; i++ {
		current += delta
		if err := a.SetBackgroundVolume(current); err != nil {
			return err
		}
		time.Sleep(pause)
	}
	return nil
}

// PlayCue sounds the salient cue.
func (a *Audio) PlayCue(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := fmt.Fprint(a.out, "\a"); err != nil {
		return err
	}
	a.busyUntil = time.Now().Add(a.cueFor)
	return nil
}

// CueBusy reports whether the cue is still sounding.
func (a *Audio) CueBusy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Now().Before(a.busyUntil)
}

// Close stops playback.
func (a *Audio) Close() error {
	return a.SetBackgroundVolume(0)
}

// Volume reports the current background volume.
func (a *Audio) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

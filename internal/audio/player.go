// Package audio plays synthesized sound effects for game events.
// Playback goes through the beep speaker; when no audio device is
// available the player stays silent.
package audio

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

// DefaultSampleRate is used when Options.SampleRate is zero.
const DefaultSampleRate = 44100

// Output is where finished streamers are sent.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Close()
}

// speakerOutput plays through the system speaker.
type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (speakerOutput) Close() { speaker.Close() }

// Options configures a Player.
type Options struct {
	Enabled    bool
	Volume     float64 // 0.0 - 1.0
	SampleRate int
	Logger     *log.Logger
	Output     Output // defaults to the system speaker
}

// Player turns session events into sounds. It implements engine.Listener.
type Player struct {
	mu     sync.Mutex
	out    Output
	rate   beep.SampleRate
	volume float64
	muted  bool
	active bool
	logger *log.Logger
}

var _ engine.Listener = (*Player)(nil)

// New creates a player. If the output cannot be initialized the player is
// returned silent and the failure is logged.
func New(opts Options) *Player {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Output == nil {
		opts.Output = speakerOutput{}
	}

	p := &Player{
		out:    opts.Output,
		rate:   beep.SampleRate(opts.SampleRate),
		volume: clampVolume(opts.Volume),
		logger: opts.Logger,
	}
	if !opts.Enabled {
		return p
	}

	if err := p.out.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		p.logger.Warn("audio disabled", "err", err)
		return p
	}
	p.active = true
	return p
}

// Active reports whether sounds reach an output device.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets the master volume, clamped to 0..1.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
}

// Muted reports whether playback is muted.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// SetMuted mutes or unmutes playback.
func (p *Player) SetMuted(m bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = m
}

// ToggleMute flips the mute state and returns the new value.
func (p *Player) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	return p.muted
}

// Close releases the output device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		p.out.Close()
		p.active = false
	}
}

// OnEvent plays the sound for a session event.
func (p *Player) OnEvent(e engine.Event) {
	s := p.soundFor(e)
	if s == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active || p.muted || p.volume <= 0 {
		return
	}
	p.out.Play(withVolume(s, p.volume))
}

// soundFor maps an event to its sound, or nil for silent events.
func (p *Player) soundFor(e engine.Event) beep.Streamer {
	switch ev := e.(type) {
	case engine.SwapSucceeded:
		return SwapSound(p.rate)
	case engine.SwapRejected:
		return RejectSound(p.rate)
	case engine.MatchFound:
		return delayed(MatchSound(ev.Length, p.rate), passDelay(ev.Pass), p.rate)
	case engine.ChainPassed:
		if ev.Index < 2 {
			return nil
		}
		return delayed(ChainSound(ev.Index, p.rate), passDelay(ev.Index), p.rate)
	case engine.GameEnded:
		if ev.Reason == engine.EndRestart {
			return nil
		}
		return GameOverSound(p.rate)
	default:
		return nil
	}
}

// passDelay offsets chain pass sounds after the swap blip.
func passDelay(pass int) time.Duration {
	return swapNote*2 + time.Duration(max(pass-1, 0))*passGap
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 1)
}

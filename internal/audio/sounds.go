package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Pitches in Hz.
const (
	noteA3 = 220.00
	noteF4 = 349.23
	noteG4 = 392.00
	noteA4 = 440.00
	noteB4 = 493.88
	noteC5 = 523.25
)

// Note lengths.
const (
	swapNote     = 60 * time.Millisecond
	rejectLength = 150 * time.Millisecond
	matchLength  = 120 * time.Millisecond
	chainNote    = 70 * time.Millisecond
	gameOverNote = 220 * time.Millisecond

	// passGap delays each chain pass so a cascade plays in order.
	passGap = 180 * time.Millisecond
)

// maxChainNotes caps the chain arpeggio.
const maxChainNotes = 5

// MatchFrequency returns the match pitch; longer matches sound higher.
func MatchFrequency(length int) float64 {
	return noteA4 * (1 + float64(max(length-3, 0))*0.2)
}

// ChainFrequencies returns the rising arpeggio for a chain pass.
func ChainFrequencies(pass int) []float64 {
	n := min(max(pass, 1), maxChainNotes)
	out := make([]float64, n)
	for i := range out {
		out[i] = noteC5 * math.Pow(1.2, float64(i))
	}
	return out
}

// SwapSound is a quick two-note blip.
func SwapSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		note(noteG4, swapNote, WaveTriangle, rate),
		note(noteB4, swapNote, WaveTriangle, rate),
	)
}

// RejectSound is a low saw buzz.
func RejectSound(rate beep.SampleRate) beep.Streamer {
	return withVolume(note(noteA3, rejectLength, WaveSaw, rate), 0.5)
}

// MatchSound is a sine ping pitched by match length.
func MatchSound(length int, rate beep.SampleRate) beep.Streamer {
	return note(MatchFrequency(length), matchLength, WaveSine, rate)
}

// ChainSound is an arpeggio that grows with the pass index.
func ChainSound(pass int, rate beep.SampleRate) beep.Streamer {
	freqs := ChainFrequencies(pass)
	notes := make([]beep.Streamer, len(freqs))
	for i, f := range freqs {
		notes[i] = note(f, chainNote, WaveSquare, rate)
	}
	return withVolume(beep.Seq(notes...), 0.4)
}

// GameOverSound is a descending triad.
func GameOverSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		note(noteC5, gameOverNote, WaveSine, rate),
		note(noteA4, gameOverNote, WaveSine, rate),
		note(noteF4, 2*gameOverNote, WaveSine, rate),
	)
}

// delayed prefixes s with d of silence.
func delayed(s beep.Streamer, d time.Duration, rate beep.SampleRate) beep.Streamer {
	if d <= 0 {
		return s
	}
	return beep.Seq(beep.Silence(rate.N(d)), s)
}

package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// WAV output format
const (
	SampleRate    = 22050
	BitsPerSample = 16
	Channels      = 1
)

// Sequence is a looping note pattern. It only maps step indices to pitches;
// timing and output are left to the renderer.
type Sequence struct {
	Frequencies []float64     // Hz, 0 is a rest
	Step        time.Duration // length of one note
	Amplitude   float64       // 0..1
}

// DefaultSequence is a slow A minor pentatonic arpeggio
var DefaultSequence = Sequence{
	Frequencies: []float64{220.00, 261.63, 293.66, 329.63, 392.00, 329.63, 293.66, 261.63},
	Step:        350 * time.Millisecond,
	Amplitude:   0.18,
}

// FrequencyAt returns the pitch of step. Steps wrap around the pattern, and
// negative steps count back from the end.
func (s Sequence) FrequencyAt(step int) float64 {
	n := len(s.Frequencies)
	if n == 0 {
		return 0
	}
	i := step % n
	if i < 0 {
		i += n
	}
	return s.Frequencies[i]
}

// Len returns the number of steps in one cycle
func (s Sequence) Len() int {
	return len(s.Frequencies)
}

// samplesPerStep returns the sample count of one note
func (s Sequence) samplesPerStep() int {
	return int(s.Step.Seconds() * SampleRate)
}

// RenderWAV writes steps notes as a 16-bit mono PCM WAV stream
func (s Sequence) RenderWAV(w io.Writer, steps int) error {
	if steps <= 0 || s.Len() == 0 {
		return fmt.Errorf("nothing to render")
	}
	perStep := s.samplesPerStep()
	if perStep <= 0 {
		return fmt.Errorf("step duration %v is too short", s.Step)
	}

	dataSize := uint32(steps * perStep * Channels * BitsPerSample / 8)
	if err := writeWAVHeader(w, dataSize); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	buf := make([]int16, perStep)
	for step := 0; step < steps; step++ {
		s.renderStep(buf, s.FrequencyAt(step))
		if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
			return fmt.Errorf("failed to write samples: %w", err)
		}
	}
	return nil
}

// renderStep fills buf with one enveloped sine note
func (s Sequence) renderStep(buf []int16, freq float64) {
	n := len(buf)
	attack := n / 10
	release := n / 4

	for i := range buf {
		if freq <= 0 {
			buf[i] = 0
			continue
		}

		env := 1.0
		switch {
		case i < attack:
			env = float64(i) / float64(attack)
		case i >= n-release:
			env = float64(n-i) / float64(release)
		}

		v := math.Sin(2*math.Pi*freq*float64(i)/SampleRate) * s.Amplitude * env
		buf[i] = int16(v * math.MaxInt16)
	}
}

func writeWAVHeader(w io.Writer, dataSize uint32) error {
	byteRate := uint32(SampleRate * Channels * BitsPerSample / 8)
	blockAlign := uint16(Channels * BitsPerSample / 8)

	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		36 + dataSize,
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16), // PCM chunk size
		uint16(1),  // PCM format
		uint16(Channels),
		uint32(SampleRate),
		byteRate,
		blockAlign,
		uint16(BitsPerSample),
		[4]byte{'d', 'a', 't', 'a'},
		dataSize,
	}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return err
		}
	}
	return nil
}

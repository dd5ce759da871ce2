package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mjibson/go-dsp/wav"

	codec2 "github.com/blues/c2fxp"
)

// sampleSource yields mono 8kHz 16-bit samples.
type sampleSource interface {
	ReadSamples(dst []int16) (int, error)
}

type rawSource struct {
	r   *bufio.Reader
	buf []byte
}

func newRawSource(r io.Reader) *rawSource {
	return &rawSource{r: bufio.NewReader(r)}
}

// ReadSamples fills dst, returning io.EOF once the input is exhausted. A
// short final read returns the samples it got with a nil error.
func (s *rawSource) ReadSamples(dst []int16) (int, error) {
	need := len(dst) * codec2.BytesPerSample
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	n, err := io.ReadFull(s.r, s.buf[:need])
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return codec2.DecodePCM(dst, s.buf[:n]), err
}

type wavSource struct {
	w         *wav.Wav
	remaining int
}

func newWavSource(r io.Reader) (*wavSource, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav header: %w", err)
	}
	if w.NumChannels != 1 || w.SampleRate != codec2.SampleRate || w.BitsPerSample != 16 {
		return nil, fmt.Errorf("wav input must be mono %dHz 16-bit, got %d channels %dHz %d-bit",
			codec2.SampleRate, w.NumChannels, w.SampleRate, w.BitsPerSample)
	}
	return &wavSource{w: w, remaining: w.Samples}, nil
}

func (s *wavSource) ReadSamples(dst []int16) (int, error) {
	n := min(len(dst), s.remaining)
	if n == 0 {
		return 0, io.EOF
	}
	data, err := s.w.ReadSamples(n)
	if err != nil {
		return 0, err
	}
	pcm, ok := data.([]int16)
	if !ok {
		return 0, fmt.Errorf("unexpected wav sample type %T", data)
	}
	s.remaining -= n
	return copy(dst, pcm), nil
}

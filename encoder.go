package codec2

import (
	"fmt"
	"io"

	"github.com/pion/logging"

	"github.com/blues/c2fxp/fxp"
)

// readChunk is the number of samples ReadFrom pulls per read.
const readChunk = 512

// Option configures an Encoder or Decoder.
type Option func(*options)

type options struct {
	sink    fxp.Sink
	log     logging.LeveledLogger
	onFrame func(Frame)
}

// WithSink forwards saturation events to s in addition to the encoder's own
// counter.
func WithSink(s fxp.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.LeveledLogger) Option {
	return func(o *options) { o.log = l }
}

// WithFrameHandler calls fn after every analysed frame.
func WithFrameHandler(fn func(Frame)) Option {
	return func(o *options) { o.onFrame = fn }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.NewDefaultLeveledLoggerForScope("codec2", logging.LogLevelDisabled, io.Discard)
	}
	return o
}

// Encoder turns a stream of 8kHz PCM samples into per-frame pitch estimates.
// It is not safe for concurrent use; run one Encoder per stream.
type Encoder struct {
	sn      [MPitch]fxp.Q15 // analysis buffer, newest frame last
	nlp     *NLP
	frames  uint64
	pitch   Pitch
	sat     fxp.Counter
	log     logging.LeveledLogger
	onFrame func(Frame)
	err     error // sticky until Reset
}

// NewEncoder creates an encoder with zeroed state.
func NewEncoder(opts ...Option) (*Encoder, error) {
	o := buildOptions(opts)
	e := &Encoder{
		log:     o.log,
		onFrame: o.onFrame,
	}
	nlp, err := NewNLP(fxp.Multi(&e.sat, o.sink))
	if err != nil {
		return nil, err
	}
	e.nlp = nlp
	e.Reset()
	return e, nil
}

// Reset zeroes the sample history, filter state and counters, and clears a
// previous error.
func (e *Encoder) Reset() {
	e.sn = [MPitch]fxp.Q15{}
	e.err = nil
	e.nlp.Reset()
	e.frames = 0
	e.pitch = Pitch{}
	e.sat.Reset()
}

// Write analyses samples in whole frames of SamplesPerFrame and returns the
// number of samples consumed. A trailing partial frame is not consumed; the
// caller resubmits it with the next samples appended.
//
// A frame that fails analysis has already entered the sample history, so
// once Write returns an error every later call returns the same error until
// Reset.
func (e *Encoder) Write(samples []int16) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	done := 0
	for len(samples)-done >= SamplesPerFrame {
		if err := e.processFrame(samples[done : done+SamplesPerFrame]); err != nil {
			return done, err
		}
		done += SamplesPerFrame
	}
	return done, nil
}

func (e *Encoder) processFrame(frame []int16) error {
	copy(e.sn[:], e.sn[SamplesPerFrame:])
	tail := e.sn[MPitch-SamplesPerFrame:]
	for i, s := range frame {
		tail[i] = fxp.Q15(s)
	}

	pitch, err := e.nlp.Estimate(e.sn[:])
	if err != nil {
		e.err = fmt.Errorf("frame %d: %w", e.frames, err)
		e.log.Errorf("%v", e.err)
		return e.err
	}
	f := Frame{Index: e.frames, Pitch: pitch}
	e.pitch = pitch
	e.frames++

	e.log.Tracef("frame %d: bin %d %.1fHz scale 2^%d", f.Index, pitch.Bin, pitch.Hz, pitch.Scale)
	if e.onFrame != nil {
		e.onFrame(f)
	}
	return nil
}

// ReadFrom reads little-endian 16-bit PCM from r until EOF and analyses it.
// A final partial frame is padded with zeros. It returns the number of bytes
// read.
func (e *Encoder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, readChunk*BytesPerSample)
	pcm := make(PCMBuffer, readChunk)
	var total int64
	pending := 0
	for {
		n, err := r.Read(buf[pending:])
		total += int64(n)
		pending += n

		ns := DecodePCM(pcm, buf[:pending])
		done, werr := e.Write(pcm[:ns])
		if werr != nil {
			return total, werr
		}
		pending = copy(buf, buf[done*BytesPerSample:pending])

		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}
	}

	if pending > 0 {
		frame := buf[:SamplesPerFrame*BytesPerSample]
		clear(frame[pending:])
		DecodePCM(pcm, frame)
		if _, err := e.Write(pcm[:SamplesPerFrame]); err != nil {
			return total, err
		}
	}
	return total, nil
}

// Frames returns the number of frames analysed since the last Reset.
func (e *Encoder) Frames() uint64 { return e.frames }

// Pitch returns the estimate for the most recent frame.
func (e *Encoder) Pitch() Pitch { return e.pitch }

// Saturations returns the saturation events counted since the last Reset.
func (e *Encoder) Saturations() fxp.Counter { return e.sat }

// Power returns the pitch estimator's power spectrum for the last frame.
// The slice is overwritten by the next frame.
func (e *Encoder) Power() []fxp.Q15 { return e.nlp.Power() }

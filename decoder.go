package codec2

import "github.com/pion/logging"

// Decoder is the synthesis side of the codec. It accepts frames but does not
// produce speech yet.
type Decoder struct {
	log    logging.LeveledLogger
	frames uint64
}

// NewDecoder creates a decoder. Only WithLogger applies.
func NewDecoder(opts ...Option) (*Decoder, error) {
	o := buildOptions(opts)
	return &Decoder{log: o.log}, nil
}

// Reset clears decoder state.
func (d *Decoder) Reset() error {
	d.frames = 0
	return nil
}

// Write accepts nsamples worth of encoded data in buf.
func (d *Decoder) Write(buf []byte, nsamples int) error {
	d.frames++
	d.log.Debugf("decoder write %d: %d bytes, %d samples", d.frames, len(buf), nsamples)
	return nil
}

// Frames returns the number of Write calls since the last Reset.
func (d *Decoder) Frames() uint64 { return d.frames }

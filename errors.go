package codec2

import "errors"

var (
	// ErrFFTSize is returned for transform lengths that are not a power of
	// two in [2, MaxFFTSize].
	ErrFFTSize = errors.New("codec2: transform size must be a power of two")

	// ErrFFTLength is returned when the real and imaginary buffers do not
	// match the transform size.
	ErrFFTLength = errors.New("codec2: transform buffer length mismatch")

	// ErrWindowLength is returned when the pitch estimator is given a window
	// that is not MPitch samples long.
	ErrWindowLength = errors.New("codec2: analysis window must hold MPitch samples")

	// ErrRescale is returned if the pre-transform rescale loop exhausts its
	// iteration bound without fitting the transform headroom.
	ErrRescale = errors.New("codec2: rescale did not converge")
)

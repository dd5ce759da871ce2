package codec2

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/blues/c2fxp/fxp"
)

// MaxFFTSize is the largest transform length NewFFT accepts.
const MaxFFTSize = 1 << 16

// FFT is a fixed point radix-2 decimation-in-time forward transform of one
// size. The output is not normalised: a full scale DC input of length N
// comes out N times larger than the DFT definition, so callers scale inputs
// down to keep the butterflies from saturating.
type FFT struct {
	size   int
	rounds int
	wmr    []fxp.Q31 // per-stage twiddle step, cos(-2*pi/m)
	wmi    []fxp.Q31 // sin(-2*pi/m)
	arith  fxp.Arith
}

// NewFFT creates a transform plan for size points. Saturation inside the
// butterflies is reported to sink, which may be nil.
func NewFFT(size int, sink fxp.Sink) (*FFT, error) {
	rounds, err := log2Size(size)
	if err != nil {
		return nil, err
	}
	f := &FFT{
		size:   size,
		rounds: rounds,
		wmr:    make([]fxp.Q31, rounds),
		wmi:    make([]fxp.Q31, rounds),
		arith:  fxp.Arith{Sink: sink},
	}
	for s := 1; s <= rounds; s++ {
		angle := -2 * math.Pi / float64(int(1)<<s)
		f.wmr[s-1] = twiddle(math.Cos(angle))
		f.wmi[s-1] = twiddle(math.Sin(angle))
	}
	return f, nil
}

// twiddle quantises v to the symmetric range [-Q31Max, Q31Max] so rotating
// by it never saturates.
func twiddle(v float64) fxp.Q31 {
	return fxp.Q31(math.Round(v * float64(fxp.Q31Max)))
}

func log2Size(n int) (int, error) {
	if n < 2 || n > MaxFFTSize || n&(n-1) != 0 {
		return 0, fmt.Errorf("%w: %d", ErrFFTSize, n)
	}
	return bits.TrailingZeros(uint(n)), nil
}

// Size returns the transform length.
func (f *FFT) Size() int { return f.size }

func (f *FFT) checkLen(nre, nim int) error {
	if nre != f.size || nim != f.size {
		return fmt.Errorf("%w: got %d and %d, want %d", ErrFFTLength, nre, nim, f.size)
	}
	return nil
}

// Forward transforms re and im in place. Butterfly products are computed in
// Q31 and rounded back to Q15.
func (f *FFT) Forward(re, im []fxp.Q15) error {
	if err := f.checkLen(len(re), len(im)); err != nil {
		return err
	}
	bitReverse(re, im, f.rounds)

	a := f.arith
	for s := 1; s <= f.rounds; s++ {
		m := 1 << s
		m2 := m >> 1
		wmr, wmi := f.wmr[s-1], f.wmi[s-1]
		for k := 0; k < f.size; k += m {
			wr, wi := fxp.Q31Max, fxp.Q31(0)
			for j := 0; j < m2; j++ {
				top, bot := k+j, k+j+m2
				tr, ti := a.CMul31(wr, wi, re[bot].Q31(), im[bot].Q31())
				nr, ni := a.Narrow(tr), a.Narrow(ti)

				ur, ui := re[top], im[top]
				re[top] = a.Add15(ur, nr)
				im[top] = a.Add15(ui, ni)
				re[bot] = a.Sub15(ur, nr)
				im[bot] = a.Sub15(ui, ni)

				wr, wi = a.CMul31(wr, wi, wmr, wmi)
			}
		}
	}
	return nil
}

// Forward31 is Forward on Q31 data.
func (f *FFT) Forward31(re, im []fxp.Q31) error {
	if err := f.checkLen(len(re), len(im)); err != nil {
		return err
	}
	bitReverse(re, im, f.rounds)

	a := f.arith
	for s := 1; s <= f.rounds; s++ {
		m := 1 << s
		m2 := m >> 1
		wmr, wmi := f.wmr[s-1], f.wmi[s-1]
		for k := 0; k < f.size; k += m {
			wr, wi := fxp.Q31Max, fxp.Q31(0)
			for j := 0; j < m2; j++ {
				top, bot := k+j, k+j+m2
				tr, ti := a.CMul31(wr, wi, re[bot], im[bot])

				ur, ui := re[top], im[top]
				re[top] = a.Add31(ur, tr)
				im[top] = a.Add31(ui, ti)
				re[bot] = a.Sub31(ur, tr)
				im[bot] = a.Sub31(ui, ti)

				wr, wi = a.CMul31(wr, wi, wmr, wmi)
			}
		}
	}
	return nil
}

// Transform runs a forward transform of len(re) points in place.
func Transform(re, im []fxp.Q15) error {
	f, err := NewFFT(len(re), nil)
	if err != nil {
		return err
	}
	return f.Forward(re, im)
}

// BitReverse swaps every element pair whose indices are bit reversals of
// each other. Applying it twice restores the input.
func BitReverse[T fxp.Q15 | fxp.Q31](re, im []T) error {
	if len(re) != len(im) {
		return fmt.Errorf("%w: got %d and %d", ErrFFTLength, len(re), len(im))
	}
	rounds, err := log2Size(len(re))
	if err != nil {
		return err
	}
	bitReverse(re, im, rounds)
	return nil
}

func bitReverse[T fxp.Q15 | fxp.Q31](re, im []T, rounds int) {
	shift := bits.UintSize - rounds
	for i := range re {
		j := int(bits.Reverse(uint(i)) >> shift)
		if j > i {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
}

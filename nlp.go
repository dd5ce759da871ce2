package codec2

import (
	"fmt"

	"github.com/blues/c2fxp/fxp"
)

// NLP holds the state for the fixed point nonlinear pitch estimator.
type NLP struct {
	sq     [MPitch]fxp.Q15   // squared, filtered speech samples
	memX   fxp.Q31           // notch filter memory
	memY   fxp.Q31           // notch filter memory
	memFir [NLP_NTAP]fxp.Q31 // FIR filter memory
	fwr    []fxp.Q15         // spectrum, real part; power after Estimate
	fwi    []fxp.Q15         // spectrum, imaginary part
	fft    *FFT
	arith  fxp.Arith
}

// NewNLP creates a pitch estimator. Saturation in any stage is reported to
// sink, which may be nil.
func NewNLP(sink fxp.Sink) (*NLP, error) {
	fft, err := NewFFT(PE_FFT_SIZE, sink)
	if err != nil {
		return nil, err
	}
	return &NLP{
		fwr:   make([]fxp.Q15, PE_FFT_SIZE),
		fwi:   make([]fxp.Q15, PE_FFT_SIZE),
		fft:   fft,
		arith: fxp.Arith{Sink: sink},
	}, nil
}

// Reset clears the filter memories and the squared sample history.
func (n *NLP) Reset() {
	n.sq = [MPitch]fxp.Q15{}
	n.memX, n.memY = 0, 0
	n.memFir = [NLP_NTAP]fxp.Q31{}
	clear(n.fwr)
	clear(n.fwi)
}

// Estimate runs the estimator over the MPitch sample analysis window sn,
// whose last SamplesPerFrame samples are new since the previous call. The
// window length is checked before any state changes; after any other error
// the filter state is undefined until Reset.
func (n *NLP) Estimate(sn []fxp.Q15) (Pitch, error) {
	if len(sn) != MPitch {
		return Pitch{}, fmt.Errorf("%w: got %d", ErrWindowLength, len(sn))
	}
	a := n.arith
	m := MPitch

	// Square the latest samples.
	for i := m - SamplesPerFrame; i < m; i++ {
		n.sq[i] = a.Mul15(sn[i], sn[i])
	}

	for i := m - SamplesPerFrame; i < m; i++ {
		// Notch filter at DC.
		x := n.sq[i].Q31()
		notch := a.Add31(a.Sub31(x, n.memX), a.Mul31(COEFF, n.memY))
		n.memX = x
		n.memY = notch

		// Low pass FIR ahead of decimation.
		copy(n.memFir[:], n.memFir[1:])
		n.memFir[NLP_NTAP-1] = notch
		var acc fxp.Q31
		for j := 0; j < NLP_NTAP; j++ {
			acc = a.Add31(acc, a.Mul31(n.memFir[j], nlpFir[j].Q31()))
		}
		n.sq[i] = a.Narrow(acc)
	}

	// Decimate and window.
	var dec [NLP_WINDOW]fxp.Q15
	for i := range dec {
		dec[i] = a.Mul15(n.sq[i*DEC], nlpHann[i])
	}

	scale, err := rescale(dec[:], n.fwr[:NLP_WINDOW])
	if err != nil {
		return Pitch{}, err
	}
	clear(n.fwr[NLP_WINDOW:])
	clear(n.fwi)

	if err := n.fft.Forward(n.fwr, n.fwi); err != nil {
		return Pitch{}, err
	}
	for i := range n.fwr {
		n.fwr[i] = a.Add15(a.Mul15(n.fwr[i], n.fwr[i]), a.Mul15(n.fwi[i], n.fwi[i]))
		n.fwi[i] = 0
	}

	// Global peak search.
	gmax := fxp.Q15(0)
	gmaxBin := nlpMinBin
	for i := nlpMinBin; i <= nlpMaxBin; i++ {
		if n.fwr[i] > gmax {
			gmax = n.fwr[i]
			gmaxBin = i
		}
	}

	// Shift the square buffer to make room for new samples.
	copy(n.sq[:], n.sq[SamplesPerFrame:])
	clear(n.sq[m-SamplesPerFrame:])

	return Pitch{
		Bin:   gmaxBin,
		Hz:    BinHz(gmaxBin),
		Power: gmax,
		Scale: scale,
	}, nil
}

// Power returns the power spectrum computed by the last Estimate call.
func (n *NLP) Power() []fxp.Q15 { return n.fwr }

// rescale writes in, scaled by the largest power of two from 1<<9 down to
// 1>>7 that keeps the transform of the result inside nlpHeadroom, to out. The
// transform output is bounded by the sum of input magnitudes, so the check is
// made on that sum. It returns log2 of the scale used.
func rescale(in, out []fxp.Q15) (int, error) {
	for shift := nlpInitScaleLog2; shift >= nlpMinScaleLog2; shift-- {
		var sum int64
		for _, v := range in {
			s := scaleBy(v, shift)
			sum += max(s, -s)
		}
		if sum > nlpHeadroom {
			continue
		}
		for i, v := range in {
			out[i] = fxp.Q15(scaleBy(v, shift))
		}
		return shift, nil
	}
	return 0, ErrRescale
}

// scaleBy shifts v left by shift, or right by -shift when shift is negative.
func scaleBy(v fxp.Q15, shift int) int64 {
	if shift < 0 {
		return int64(v) >> -shift
	}
	return int64(v) << shift
}

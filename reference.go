package codec2

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// nlpFirFloat: 48-tap 600Hz low-pass FIR filter coefficients (from nlp.c).
// nlpFir is this table in Q15.
var nlpFirFloat = [NLP_NTAP]float64{
	-1.0818124e-03, -1.1008344e-03, -9.2768838e-04, -4.2289438e-04,
	5.5034190e-04, 2.0029849e-03, 3.7058509e-03, 5.1449415e-03,
	5.5924666e-03, 4.3036754e-03, 8.0284511e-04, -4.8204610e-03,
	-1.1705810e-02, -1.8199275e-02, -2.2065282e-02, -2.0920610e-02,
	-1.2808831e-02, 3.2204775e-03, 2.6683811e-02, 5.5520624e-02,
	8.6305944e-02, 1.1480192e-01, 1.3674206e-01, 1.4867556e-01,
	1.4867556e-01, 1.3674206e-01, 1.1480192e-01, 8.6305944e-02,
	5.5520624e-02, 2.6683811e-02, 3.2204775e-03, -1.2808831e-02,
	-2.0920610e-02, -2.2065282e-02, -1.8199275e-02, -1.1705810e-02,
	-4.8204610e-03, 8.0284511e-04, 4.3036754e-03, 5.5924666e-03,
	5.1449415e-03, 3.7058509e-03, 2.0029849e-03, 5.5034190e-04,
	-4.2289438e-04, -9.2768838e-04, -1.1008344e-03, -1.0818124e-03,
}

// FloatFFT is the float transform used by the reference estimator.
type FloatFFT interface {
	Forward(in []float64) []complex128
}

// defaultFFT implements FloatFFT using go-dsp/fft.
type defaultFFT struct {
	size int
}

// NewFloatFFT creates a float FFT for the given size.
func NewFloatFFT(size int) FloatFFT {
	return &defaultFFT{size: size}
}

// Forward returns the FFT of a real-valued input.
func (f *defaultFFT) Forward(in []float64) []complex128 {
	return fft.FFTReal(in)
}

// ReferenceNLP is the float64 counterpart of NLP. It runs the same stages
// without quantisation or rescaling and is used to check the fixed point
// estimator.
type ReferenceNLP struct {
	sn     []float64 // analysis buffer, newest frame last
	sq     []float64 // squared speech samples
	memX   float64   // notch filter memory
	memY   float64
	memFir []float64 // FIR filter memory (length = NLP_NTAP)
	w      []float64 // window for the decimated signal (length = MPitch/DEC)
	fft    FloatFFT
	in     []float64 // transform input, PE_FFT_SIZE
}

// NewReferenceNLP creates a float estimator with zeroed state.
func NewReferenceNLP() *ReferenceNLP {
	return &ReferenceNLP{
		sn:     make([]float64, MPitch),
		sq:     make([]float64, MPitch),
		memFir: make([]float64, NLP_NTAP),
		w:      window.Hann(NLP_WINDOW),
		fft:    NewFloatFFT(PE_FFT_SIZE),
		in:     make([]float64, PE_FFT_SIZE),
	}
}

// Reset zeroes all history.
func (r *ReferenceNLP) Reset() {
	clear(r.sn)
	clear(r.sq)
	clear(r.memFir)
	r.memX, r.memY = 0, 0
}

// AnalyzeFrame shifts one frame of PCM into the analysis buffer and returns
// the float pitch estimate.
func (r *ReferenceNLP) AnalyzeFrame(frame []int16) (Pitch, error) {
	if len(frame) != SamplesPerFrame {
		return Pitch{}, fmt.Errorf("invalid PCM frame length: got %d, want %d", len(frame), SamplesPerFrame)
	}
	copy(r.sn, r.sn[SamplesPerFrame:])
	for i, s := range frame {
		r.sn[MPitch-SamplesPerFrame+i] = float64(s) / (1 << 15)
	}
	return r.Estimate(r.sn)
}

// Estimate runs the float estimator over an MPitch sample window in [-1, 1).
func (r *ReferenceNLP) Estimate(sn []float64) (Pitch, error) {
	if len(sn) != MPitch {
		return Pitch{}, fmt.Errorf("%w: got %d", ErrWindowLength, len(sn))
	}
	m := MPitch
	n := SamplesPerFrame

	// Square the latest n samples.
	for i := m - n; i < m; i++ {
		r.sq[i] = sn[i] * sn[i]
	}
	// Apply notch filter at DC.
	for i := m - n; i < m; i++ {
		notch := r.sq[i] - r.memX
		notch += 0.95 * r.memY
		r.memX = r.sq[i]
		r.memY = notch
		r.sq[i] = notch
	}
	// FIR filtering (decimation FIR filter).
	for i := m - n; i < m; i++ {
		copy(r.memFir, r.memFir[1:])
		r.memFir[NLP_NTAP-1] = r.sq[i]
		r.sq[i] = 0.0
		for j := 0; j < NLP_NTAP; j++ {
			r.sq[i] += r.memFir[j] * nlpFirFloat[j]
		}
	}
	// Decimate and window.
	clear(r.in)
	for i := 0; i < m/DEC; i++ {
		r.in[i] = r.sq[i*DEC] * r.w[i]
	}
	// Global peak search on the magnitude squared.
	fw := r.fft.Forward(r.in)
	gmax := 0.0
	gmaxBin := nlpMinBin
	for i := nlpMinBin; i <= nlpMaxBin; i++ {
		p := real(fw[i])*real(fw[i]) + imag(fw[i])*imag(fw[i])
		if p > gmax {
			gmax = p
			gmaxBin = i
		}
	}
	// Shift the square buffer to make room for new samples.
	copy(r.sq, r.sq[n:])
	clear(r.sq[m-n:])

	return Pitch{Bin: gmaxBin, Hz: BinHz(gmaxBin)}, nil
}

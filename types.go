package codec2

import "github.com/blues/c2fxp/fxp"

// Stream and frame constants.
const (
	SampleRate      = 8000 // input sample rate in Hz
	SamplesPerFrame = 80   // samples consumed per analysis frame (10ms)
	HistoryFrames   = 4
	MPitch          = HistoryFrames * SamplesPerFrame // pitch analysis window, 40ms
	BytesPerSample  = 2
)

// NLP related constants.
const (
	PE_FFT_SIZE = 512 // DFT size for pitch estimation
	DEC         = 5   // decimation factor
	NLP_NTAP    = 48  // decimation FIR filter order
	NLP_WINDOW  = MPitch / DEC
	PMinHz      = 50  // lowest fundamental searched
	PMaxHz      = 400 // highest fundamental searched

	// COEFF is the 0.95 notch filter pole in Q31.
	COEFF fxp.Q31 = 2040109466

	// nlpInitScaleLog2 is log2 of the first rescale factor tried before the
	// transform.
	nlpInitScaleLog2 = 9
	// nlpMinScaleLog2 is the last factor tried. 64 full scale inputs scaled
	// by 1<<-7 sum to half of Q15Max, so the search always succeeds.
	nlpMinScaleLog2 = -7
	// nlpHeadroom bounds the sum of magnitudes fed to the transform, leaving
	// margin for butterfly rounding.
	nlpHeadroom = int64(fxp.Q15Max) - 256
)

// Search band expressed in PE_FFT_SIZE bins of the decimated signal.
const (
	nlpMinBin = PE_FFT_SIZE * DEC * PMinHz / SampleRate
	nlpMaxBin = PE_FFT_SIZE * DEC * PMaxHz / SampleRate
)

// nlpFir is the 48-tap 600Hz low-pass decimation filter in Q15. The taps sum
// to exactly fxp.Q15One.
var nlpFir = [NLP_NTAP]fxp.Q15{
	-35, -36, -30, -14, 18, 66, 121, 169,
	183, 141, 26, -158, -384, -596, -723, -686,
	-420, 106, 874, 1819, 2828, 3762, 4481, 4872,
	4872, 4481, 3762, 2828, 1819, 874, 106, -420,
	-686, -723, -596, -384, -158, 26, 141, 183,
	169, 121, 66, 18, -14, -30, -36, -35,
}

// nlpHann is 0.5 - 0.5*cos(2*pi*i/(NLP_WINDOW-1)) in Q15.
var nlpHann = [NLP_WINDOW]fxp.Q15{
	0, 81, 325, 728, 1287, 1995, 2847, 3833,
	4944, 6169, 7495, 8909, 10398, 11947, 13539, 15160,
	16792, 18421, 20030, 21602, 23123, 24576, 25948, 27225,
	28394, 29444, 30364, 31145, 31780, 32261, 32585, 32748,
	32748, 32585, 32261, 31780, 31145, 30364, 29444, 28394,
	27225, 25948, 24576, 23123, 21602, 20030, 18421, 16792,
	15160, 13539, 11947, 10398, 8909, 7495, 6169, 4944,
	3833, 2847, 1995, 1287, 728, 325, 81, 0,
}

// PCMBuffer defines PCM samples as int16.
type PCMBuffer []int16

// Pitch is the coarse pitch estimate for one frame.
type Pitch struct {
	Bin   int     // winning PE_FFT_SIZE bin
	Hz    float64 // fundamental frequency
	Power fxp.Q15 // spectral power at Bin
	Scale int     // log2 of the rescale factor applied before the transform; negative attenuates
}

// BinHz converts a pitch estimation bin to Hz.
func BinHz(bin int) float64 {
	return float64(bin) * SampleRate / (PE_FFT_SIZE * DEC)
}

// Period returns the pitch period in samples at SampleRate.
func (p Pitch) Period() float64 {
	if p.Hz == 0 {
		return 0
	}
	return SampleRate / p.Hz
}

// Frame is the analysis result for one SamplesPerFrame block.
type Frame struct {
	Index uint64 // zero based frame number since the last reset
	Pitch Pitch
}

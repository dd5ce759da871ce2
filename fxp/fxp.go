// Package fxp implements saturating Q15 and Q31 fixed point arithmetic.
//
// Values are signed fractions in [-1, 1). Every operation is computed at a
// wider precision and then clamped to the range of its operands; a clamp is
// reported to the Sink of the Arith that performed it and never wraps.
package fxp

import "math"

// Q15 is a signed fraction with 15 fractional bits.
type Q15 int16

// Q31 is a signed fraction with 31 fractional bits.
type Q31 int32

const (
	Q15Bits = 15
	Q31Bits = 31

	Q15Max Q15 = math.MaxInt16
	Q15Min Q15 = math.MinInt16
	Q31Max Q31 = math.MaxInt32
	Q31Min Q31 = math.MinInt32

	// Q15One is 1.0 in Q15 units. It is not itself representable as a Q15.
	Q15One = 1 << Q15Bits
	// Q31One is 1.0 in Q31 units.
	Q31One = 1 << Q31Bits

	widenShift = Q31Bits - Q15Bits
)

// Float64 returns q as a float.
func (q Q15) Float64() float64 { return float64(q) / Q15One }

// Float64 returns q as a float.
func (q Q31) Float64() float64 { return float64(q) / Q31One }

// Q31 widens q without loss.
func (q Q15) Q31() Q31 { return Q31(q) << widenShift }

// Q15FromFloat rounds f to the nearest Q15 value, clamping out of range input.
func Q15FromFloat(f float64) Q15 {
	v := math.Round(f * Q15One)
	switch {
	case v >= float64(Q15Max):
		return Q15Max
	case v <= float64(Q15Min):
		return Q15Min
	}
	return Q15(v)
}

// Q31FromFloat rounds f to the nearest Q31 value, clamping out of range input.
func Q31FromFloat(f float64) Q31 {
	v := math.Round(f * Q31One)
	switch {
	case v >= float64(Q31Max):
		return Q31Max
	case v <= float64(Q31Min):
		return Q31Min
	}
	return Q31(v)
}

// Arith performs saturating arithmetic. The zero value discards saturation
// events; set Sink to observe them.
type Arith struct {
	Sink Sink
}

func (a Arith) report(w Width, v int64) {
	if a.Sink != nil {
		a.Sink.Saturated(Event{Width: w, Value: v})
	}
}

// Sat15 clamps v to the Q15 range.
func (a Arith) Sat15(v int32) Q15 {
	if v > int32(Q15Max) {
		a.report(Width15, int64(v))
		return Q15Max
	}
	if v < int32(Q15Min) {
		a.report(Width15, int64(v))
		return Q15Min
	}
	return Q15(v)
}

// Sat31 clamps v to the Q31 range.
func (a Arith) Sat31(v int64) Q31 {
	if v > int64(Q31Max) {
		a.report(Width31, v)
		return Q31Max
	}
	if v < int64(Q31Min) {
		a.report(Width31, v)
		return Q31Min
	}
	return Q31(v)
}

func (a Arith) Add15(x, y Q15) Q15 { return a.Sat15(int32(x) + int32(y)) }
func (a Arith) Sub15(x, y Q15) Q15 { return a.Sat15(int32(x) - int32(y)) }
func (a Arith) Add31(x, y Q31) Q31 { return a.Sat31(int64(x) + int64(y)) }
func (a Arith) Sub31(x, y Q31) Q31 { return a.Sat31(int64(x) - int64(y)) }

// Mul15 multiplies at double width and rounds half away from zero.
func (a Arith) Mul15(x, y Q15) Q15 {
	p := int32(x) * int32(y)
	if p >= 0 {
		p += Q15One >> 1
	} else {
		p -= Q15One >> 1
	}
	return a.Sat15(p / Q15One)
}

// Mul31 multiplies at double width and rounds half away from zero.
func (a Arith) Mul31(x, y Q31) Q31 {
	p := int64(x) * int64(y)
	if p >= 0 {
		p += Q31One >> 1
	} else {
		p -= Q31One >> 1
	}
	return a.Sat31(p / Q31One)
}

// CMul15 returns the complex product (ar + j·ai)(br + j·bi).
func (a Arith) CMul15(ar, ai, br, bi Q15) (Q15, Q15) {
	re := a.Sub15(a.Mul15(ar, br), a.Mul15(ai, bi))
	im := a.Add15(a.Mul15(ar, bi), a.Mul15(br, ai))
	return re, im
}

// CMul31 returns the complex product (ar + j·ai)(br + j·bi).
func (a Arith) CMul31(ar, ai, br, bi Q31) (Q31, Q31) {
	re := a.Sub31(a.Mul31(ar, br), a.Mul31(ai, bi))
	im := a.Add31(a.Mul31(ar, bi), a.Mul31(br, ai))
	return re, im
}

// Narrow converts q to Q15, rounding to nearest. Values within half an LSB
// of +1.0 saturate.
func (a Arith) Narrow(q Q31) Q15 {
	return a.Sat15(int32((int64(q) + 1<<(widenShift-1)) >> widenShift))
}

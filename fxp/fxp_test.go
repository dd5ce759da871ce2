package fxp

import (
	"math"
	"testing"
)

func TestSat15(t *testing.T) {
	tests := []struct {
		in     int32
		want   Q15
		events int
	}{
		{0, 0, 0},
		{32767, 32767, 0},
		{-32768, -32768, 0},
		{32768, Q15Max, 1},
		{-32769, Q15Min, 1},
		{1 << 20, Q15Max, 1},
	}
	for _, tt := range tests {
		var c Counter
		a := Arith{Sink: &c}
		if got := a.Sat15(tt.in); got != tt.want {
			t.Errorf("Sat15(%d) = %d, want %d", tt.in, got, tt.want)
		}
		if int(c.Total()) != tt.events {
			t.Errorf("Sat15(%d) reported %d events, want %d", tt.in, c.Total(), tt.events)
		}
	}
}

func TestAddSubSaturate(t *testing.T) {
	var c Counter
	a := Arith{Sink: &c}

	if got := a.Add15(20000, 20000); got != Q15Max {
		t.Errorf("Add15 overflow = %d, want %d", got, Q15Max)
	}
	if got := a.Sub15(-20000, 20000); got != Q15Min {
		t.Errorf("Sub15 underflow = %d, want %d", got, Q15Min)
	}
	if got := a.Add31(Q31Max, 1); got != Q31Max {
		t.Errorf("Add31 overflow = %d, want %d", got, Q31Max)
	}
	if got := a.Sub31(Q31Min, 1); got != Q31Min {
		t.Errorf("Sub31 underflow = %d, want %d", got, Q31Min)
	}
	if c.Positive != 2 || c.Negative != 2 {
		t.Errorf("counter = %+v, want 2 positive and 2 negative", c)
	}

	c.Reset()
	if got := a.Add15(100, -300); got != -200 {
		t.Errorf("Add15(100, -300) = %d", got)
	}
	if c.Total() != 0 {
		t.Errorf("in-range add reported %d events", c.Total())
	}
}

func TestAddNeverLeavesRange(t *testing.T) {
	var c Counter
	a := Arith{Sink: &c}
	vals := []Q15{Q15Min, -20000, -1, 0, 1, 12345, 20000, Q15Max}
	for _, x := range vals {
		for _, y := range vals {
			c.Reset()
			sum := int32(x) + int32(y)
			got := a.Add15(x, y)
			if int32(got) != sum && c.Total() != 1 {
				t.Errorf("Add15(%d, %d) = %d clamped without an event", x, y, got)
			}
			if sum > int32(Q15Max) && got != Q15Max {
				t.Errorf("Add15(%d, %d) = %d, want %d", x, y, got, Q15Max)
			}
			if sum < int32(Q15Min) && got != Q15Min {
				t.Errorf("Add15(%d, %d) = %d, want %d", x, y, got, Q15Min)
			}
		}
	}
}

func TestMul15Rounding(t *testing.T) {
	var a Arith
	tests := []struct {
		x, y Q15
		want Q15
	}{
		{16384, 16384, 8192},   // 0.5 * 0.5
		{-16384, 16384, -8192}, // sign symmetric
		{1, 16384, 1},          // 0.5 LSB rounds away from zero
		{-1, 16384, -1},
		{1, 16383, 0},
		{Q15Max, Q15Max, 32766},
		{3, 3, 0},
	}
	for _, tt := range tests {
		if got := a.Mul15(tt.x, tt.y); got != tt.want {
			t.Errorf("Mul15(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestMulMinusOneSquaredSaturates(t *testing.T) {
	var c Counter
	a := Arith{Sink: &c}
	if got := a.Mul15(Q15Min, Q15Min); got != Q15Max {
		t.Errorf("Mul15(-1, -1) = %d, want %d", got, Q15Max)
	}
	if got := a.Mul31(Q31Min, Q31Min); got != Q31Max {
		t.Errorf("Mul31(-1, -1) = %d, want %d", got, Q31Max)
	}
	if c.Positive != 2 {
		t.Errorf("positive events = %d, want 2", c.Positive)
	}
}

func TestMul31(t *testing.T) {
	var a Arith
	half := Q31(1 << 30)
	if got := a.Mul31(half, half); got != 1<<29 {
		t.Errorf("Mul31(0.5, 0.5) = %d, want %d", got, 1<<29)
	}
	if got := a.Mul31(-half, half); got != -(1 << 29) {
		t.Errorf("Mul31(-0.5, 0.5) = %d, want %d", got, -(1 << 29))
	}
}

func TestCMul(t *testing.T) {
	var a Arith
	// (0.5 + 0.25j)(0.5 - 0.5j) = 0.375 - 0.125j
	re, im := a.CMul15(16384, 8192, 16384, -16384)
	if re != 12288 || im != -4096 {
		t.Errorf("CMul15 = (%d, %d), want (12288, -4096)", re, im)
	}
	re31, im31 := a.CMul31(Q31(1<<30), Q31(1<<29), Q31(1<<30), -Q31(1<<30))
	if re31 != 3<<28 || im31 != -(1<<28) {
		t.Errorf("CMul31 = (%d, %d)", re31, im31)
	}
}

func TestNarrow(t *testing.T) {
	var c Counter
	a := Arith{Sink: &c}
	tests := []struct {
		in   Q31
		want Q15
	}{
		{Q15(1234).Q31(), 1234},
		{Q15(-1234).Q31(), -1234},
		{0x8000, 1},  // half LSB rounds up
		{0x7fff, 0},
		{-0x8000, 0}, // half LSB rounds towards +inf
		{-0x8001, -1},
		{Q31Min, Q15Min},
	}
	for _, tt := range tests {
		if got := a.Narrow(tt.in); got != tt.want {
			t.Errorf("Narrow(%#x) = %d, want %d", int32(tt.in), got, tt.want)
		}
	}
	if c.Total() != 0 {
		t.Fatalf("unexpected saturation events: %+v", c)
	}
	if got := a.Narrow(Q31Max); got != Q15Max || c.Positive != 1 {
		t.Errorf("Narrow(Q31Max) = %d with %d events", got, c.Positive)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	for _, f := range []float64{-1, -0.7071, -1e-5, 0, 1e-5, 0.25, 0.5, 0.95, 0.99997} {
		q := Q15FromFloat(f)
		if d := math.Abs(q.Float64() - f); d > 1.0/Q15One {
			t.Errorf("Q15 round trip of %v = %v (diff %v)", f, q.Float64(), d)
		}
		q31 := Q31FromFloat(f)
		if d := math.Abs(q31.Float64() - f); d > 1.0/Q31One {
			t.Errorf("Q31 round trip of %v = %v (diff %v)", f, q31.Float64(), d)
		}
	}
	if Q15FromFloat(1.5) != Q15Max || Q15FromFloat(-3) != Q15Min {
		t.Error("Q15FromFloat does not clamp")
	}
	if Q31FromFloat(1) != Q31Max || Q31FromFloat(-1) != Q31Min {
		t.Error("Q31FromFloat does not clamp")
	}
}

func TestWidenIsExact(t *testing.T) {
	for _, q := range []Q15{Q15Min, -1, 0, 1, Q15Max} {
		if got := q.Q31().Float64(); got != q.Float64() {
			t.Errorf("Q15(%d).Q31() = %v, want %v", q, got, q.Float64())
		}
	}
}

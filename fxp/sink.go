package fxp

import "github.com/pion/logging"

// Width identifies the format an operation saturated in.
type Width uint8

const (
	Width15 Width = 15
	Width31 Width = 31
)

func (w Width) String() string {
	switch w {
	case Width15:
		return "q15"
	case Width31:
		return "q31"
	}
	return "q?"
}

// Event describes one clamped result. Value is the exact result before
// clamping.
type Event struct {
	Width Width
	Value int64
}

// Positive reports whether the result overflowed towards +1.
func (e Event) Positive() bool { return e.Value > 0 }

// Sink receives saturation events. Events are delivered from the goroutine
// that owns the Arith; implementations need no locking.
type Sink interface {
	Saturated(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Saturated(e Event) { f(e) }

// Counter counts saturation events by direction.
type Counter struct {
	Positive uint64
	Negative uint64
}

func (c *Counter) Saturated(e Event) {
	if e.Positive() {
		c.Positive++
	} else {
		c.Negative++
	}
}

// Total returns the number of events seen since the last Reset.
func (c *Counter) Total() uint64 { return c.Positive + c.Negative }

func (c *Counter) Reset() { *c = Counter{} }

type multiSink []Sink

func (m multiSink) Saturated(e Event) {
	for _, s := range m {
		s.Saturated(e)
	}
}

// Multi returns a Sink that forwards every event to each non-nil sink.
func Multi(sinks ...Sink) Sink {
	m := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

type logSink struct {
	log logging.LeveledLogger
}

// LogSink returns a Sink that writes one trace line per event.
func LogSink(log logging.LeveledLogger) Sink {
	return logSink{log: log}
}

func (l logSink) Saturated(e Event) {
	if e.Positive() {
		l.log.Tracef("+sat %s %d", e.Width, e.Value)
		return
	}
	l.log.Tracef("-sat %s %d", e.Width, e.Value)
}

// Command c2enc runs the fixed point pitch estimator over 8kHz mono speech
// and writes one line per 10ms frame: frame number, pitch bin and pitch in Hz.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pion/logging"

	codec2 "github.com/blues/c2fxp"
	"github.com/blues/c2fxp/fxp"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "c2enc: %v\n", err)
		}
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "c2enc: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	factory := logging.NewDefaultLoggerFactory()
	factory.Writer = os.Stderr
	factory.DefaultLogLevel = cfg.logLevel
	log := factory.NewLogger("c2enc")

	// Open input file or use stdin
	var fin *os.File
	if cfg.input == "-" {
		fin = os.Stdin
	} else {
		f, err := os.Open(cfg.input)
		if err != nil {
			return fmt.Errorf("opening input speech file: %w", err)
		}
		defer f.Close()
		fin = f
	}

	// Open output file or use stdout
	var fout *os.File
	if cfg.output == "-" {
		fout = os.Stdout
	} else {
		f, err := os.Create(cfg.output)
		if err != nil {
			return fmt.Errorf("creating output pitch file: %w", err)
		}
		defer f.Close()
		fout = f
	}
	out := bufio.NewWriter(fout)
	defer out.Flush()

	var ref *codec2.ReferenceNLP
	if cfg.compare {
		ref = codec2.NewReferenceNLP()
	}
	var werr error
	var lastFrame []int16
	enc, err := codec2.NewEncoder(
		codec2.WithLogger(factory.NewLogger("codec2")),
		codec2.WithSink(fxp.LogSink(factory.NewLogger("fxp"))),
		codec2.WithFrameHandler(func(f codec2.Frame) {
			if werr != nil {
				return
			}
			if ref == nil {
				_, werr = fmt.Fprintf(out, "%d\t%d\t%.3f\n", f.Index, f.Pitch.Bin, f.Pitch.Hz)
				return
			}
			p, err := ref.AnalyzeFrame(lastFrame)
			if err != nil {
				werr = err
				return
			}
			_, werr = fmt.Fprintf(out, "%d\t%d\t%.3f\t%d\t%.3f\n", f.Index, f.Pitch.Bin, f.Pitch.Hz, p.Bin, p.Hz)
		}),
	)
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}

	if cfg.format == "raw" && !cfg.compare {
		if _, err := enc.ReadFrom(fin); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	} else {
		var src sampleSource
		if cfg.format == "wav" {
			if src, err = newWavSource(fin); err != nil {
				return err
			}
		} else {
			src = newRawSource(fin)
		}
		if err := encodeFrames(enc, src, &lastFrame, fin == os.Stdin && fout != os.Stdout); err != nil {
			return err
		}
	}
	if werr != nil {
		return fmt.Errorf("writing output: %w", werr)
	}

	sat := enc.Saturations()
	log.Infof("%d frames, %d saturations (+%d/-%d)", enc.Frames(), sat.Total(), sat.Positive, sat.Negative)
	return nil
}

// encodeFrames feeds src to enc one frame at a time, zero padding the last
// partial frame. current always points at the frame being analysed.
func encodeFrames(enc *codec2.Encoder, src sampleSource, current *[]int16, progress bool) error {
	frame := make(codec2.PCMBuffer, codec2.SamplesPerFrame)
	*current = frame
	for {
		n, err := src.ReadSamples(frame)
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading input: %w", err)
		}
		if n == 0 {
			return nil
		}
		clear(frame[n:])
		if _, err := enc.Write(frame); err != nil {
			return err
		}

		// Print frame number to stderr if reading from stdin
		if progress {
			fmt.Fprintf(os.Stderr, "Frame: %d\r", enc.Frames())
		}
	}
}

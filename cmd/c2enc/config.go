package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pion/logging"
)

// config holds the command line settings. Flags default to C2FXP_*
// environment variables.
type config struct {
	input    string
	output   string
	format   string // raw or wav
	compare  bool
	logLevel logging.LogLevel
}

var logLevels = map[string]logging.LogLevel{
	"disabled": logging.LogLevelDisabled,
	"error":    logging.LogLevelError,
	"warn":     logging.LogLevelWarn,
	"info":     logging.LogLevelInfo,
	"debug":    logging.LogLevelDebug,
	"trace":    logging.LogLevelTrace,
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func parseConfig(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("c2enc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: c2enc [flags] InputRawspeechFile [OutputPitchFile]\n")
		fmt.Fprintf(stderr, "e.g. (raw)   c2enc input.raw pitch.txt\n")
		fmt.Fprintf(stderr, "e.g. (wav)   c2enc -compare input.wav -\n")
		fs.PrintDefaults()
	}
	format := fs.String("format", envStr("C2FXP_FORMAT", ""), "input format: raw or wav (default: from file extension)")
	compare := fs.Bool("compare", envBool("C2FXP_COMPARE", false), "add the float reference estimate to each line")
	level := fs.String("log", envStr("C2FXP_LOG_LEVEL", "warn"), "log level: disabled, error, warn, info, debug, trace")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return config{}, fmt.Errorf("expected 1 or 2 arguments, got %d", fs.NArg())
	}

	cfg := config{
		input:   fs.Arg(0),
		output:  "-",
		compare: *compare,
	}
	if fs.NArg() == 2 {
		cfg.output = fs.Arg(1)
	}

	lvl, ok := logLevels[strings.ToLower(*level)]
	if !ok {
		return config{}, fmt.Errorf("unknown log level %q", *level)
	}
	cfg.logLevel = lvl

	cfg.format = strings.ToLower(*format)
	if cfg.format == "" {
		cfg.format = "raw"
		if strings.ToLower(filepath.Ext(cfg.input)) == ".wav" {
			cfg.format = "wav"
		}
	}
	if cfg.format != "raw" && cfg.format != "wav" {
		return config{}, fmt.Errorf("unknown input format %q", cfg.format)
	}
	return cfg, nil
}

// Command paintmix runs one optimization from a JSON request document.
//
// The request shape matches the library's Request type. The response is
// written to stdout as JSON; diagnostics go to stderr.
//
// Usage:
//
//	paintmix -request request.json [-seed 42] [-algorithm auto] [-v]
//	cat request.json | paintmix
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	paintmix "github.com/paintmixr/paintmix"
)

func main() {
	var (
		requestPath = flag.String("request", "", "path to the request JSON; stdin when empty")
		seed        = flag.Uint64("seed", 0, "random seed; a fresh seed is drawn when omitted")
		algorithm   = flag.String("algorithm", string(paintmix.AlgorithmAuto), "auto, differential_evolution or tpe_hybrid")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*requestPath, *seed, *algorithm, logger); err != nil {
		var verr *paintmix.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, verr.Error())
			os.Exit(2)
		}
		logger.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(requestPath string, seed uint64, algorithm string, logger *slog.Logger) error {
	var in io.Reader = os.Stdin
	if requestPath != "" {
		f, err := os.Open(requestPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var req paintmix.Request
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	opts := []paintmix.Option{
		paintmix.WithAlgorithm(paintmix.Algorithm(algorithm)),
		paintmix.WithLogger(logger),
	}
	if seed != 0 {
		opts = append(opts, paintmix.WithSeed(seed))
	}

	resp, err := paintmix.Optimize(context.Background(), req, opts...)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

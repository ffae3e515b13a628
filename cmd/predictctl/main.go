// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/auth"
	"github.com/tomtom215/eventpulse/internal/client"
	"github.com/tomtom215/eventpulse/internal/models"
)

const usage = `usage: predictctl <command> [flags]

commands:
  predict   score one event read from -file (or stdin); -format text for a summary
  batch     score a JSON array of events read from -file (or stdin)
  train     start a training run
  status    show training status
  info      show the serving model
  health    show service health
  token     issue a bearer token (needs JWT_SECRET)

environment:
  EVENTPULSE_URL    service base URL (default http://localhost:8000)
  EVENTPULSE_TOKEN  bearer token sent with every request
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, "predictctl:", err)
		os.Exit(1)
	}
}

// env looks up environment variables; tests pass a map-backed function.
type env func(string) string

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv env) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "token":
		return runToken(rest, stdout, stderr, getenv)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr(getenv, "EVENTPULSE_URL", "http://localhost:8000"), "service base URL")
	token := fs.String("token", getenv("EVENTPULSE_TOKEN"), "bearer token")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	noFallback := fs.Bool("no-fallback", false, "fail instead of returning heuristic predictions")
	verbose := fs.Bool("v", false, "log client retries and fallbacks")

	var (
		file        *string
		format      *string
		samples     *int
		tune        *bool
		noFeatEng   *bool
		seed        *int64
		top         *int
		needsClient = true
	)
	switch cmd {
	case "predict", "batch":
		file = fs.String("file", "-", "JSON input file, - for stdin")
		format = fs.String("format", "json", "output format: json or text")
	case "train":
		samples = fs.Int("samples", 5000, "synthetic training samples (100-50000)")
		tune = fs.Bool("tune", false, "run the hyperparameter grid search")
		noFeatEng = fs.Bool("no-feature-engineering", false, "train on the base features only")
		seed = fs.Int64("seed", -1, "random seed, -1 for the server default")
	case "info":
		top = fs.Int("top", 0, "number of feature importances, 0 for the server default")
	case "status", "health":
	default:
		needsClient = false
	}
	if !needsClient {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if format != nil && *format != "json" && *format != "text" {
		return fmt.Errorf("unknown format %q: want json or text", *format)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	cfg := client.DefaultConfig(*baseURL)
	cfg.Token = *token
	cfg.Timeout = *timeout
	cfg.Fallback = !*noFallback
	c, err := client.New(cfg, logger)
	if err != nil {
		return err
	}

	var result interface{}
	switch cmd {
	case "predict":
		var event models.EventRecord
		if err := readJSON(*file, stdin, &event); err != nil {
			return err
		}
		result, err = c.Predict(ctx, event)
	case "batch":
		events, rerr := readEvents(*file, stdin)
		if rerr != nil {
			return rerr
		}
		result, err = c.PredictBatch(ctx, events)
	case "train":
		req := models.TrainingRequest{NSamples: *samples, TuneHyperparameters: *tune}
		if *noFeatEng {
			off := false
			req.EnableFeatureEngineering = &off
		}
		if *seed >= 0 {
			s := uint64(*seed)
			req.Seed = &s
		}
		result, err = c.Train(ctx, req)
	case "status":
		result, err = c.TrainingStatus(ctx)
	case "info":
		result, err = c.ModelInfo(ctx, *top)
	case "health":
		result, err = c.Health(ctx)
	}
	if err != nil {
		return err
	}
	if format != nil && *format == "text" {
		return printText(stdout, result)
	}
	return printJSON(stdout, result)
}

func runToken(args []string, stdout, stderr io.Writer, getenv env) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	user := fs.String("user", "", "username written to the token")
	role := fs.String("role", auth.RoleViewer, "role: admin, operator or viewer")
	ttl := fs.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	manager, err := auth.NewJWTManager(secret, *ttl)
	if err != nil {
		return err
	}
	token, expires, err := manager.GenerateToken(*user, *role)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, token)
	fmt.Fprintf(stderr, "expires %s\n", expires.UTC().Format(time.RFC3339))
	return nil
}

func envOr(getenv env, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func readJSON(path string, stdin io.Reader, v interface{}) error {
	data, err := readInput(path, stdin)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

// readEvents accepts either a bare array or a {"events": [...]} object.
func readEvents(path string, stdin io.Reader) ([]models.EventRecord, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	data = bytes.TrimSpace(data)

	var events []models.EventRecord
	if strings.HasPrefix(string(data), "[") {
		err = json.Unmarshal(data, &events)
	} else {
		var req models.BatchPredictionRequest
		err = json.Unmarshal(data, &req)
		events = req.Events
	}
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	return events, nil
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

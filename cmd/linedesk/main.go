// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// linedesk is the operator console for a LINE messaging channel. It
// loads the user directory from the messaging server, keeps each
// conversation in sync through the server's websocket push channel and
// a periodic HTTP poll of the conversation on screen, and lets the
// operator read and reply from a terminal UI.
//
// Background logging is routed into the console's status bar instead
// of stderr, which would corrupt the alt-screen display. --log-output
// additionally writes every record as JSON for post-mortem debugging.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/linedesk/linedesk/engine"
	"github.com/linedesk/linedesk/engine/trace"
	"github.com/linedesk/linedesk/lib/alert"
	"github.com/linedesk/linedesk/lib/config"
	"github.com/linedesk/linedesk/lib/consoleui"
	"github.com/linedesk/linedesk/lib/logging"
	"github.com/linedesk/linedesk/lib/metrics"
	"github.com/linedesk/linedesk/lib/version"
	"github.com/linedesk/linedesk/messaging"
	"github.com/linedesk/linedesk/transport"
)

// directoryTimeout bounds the startup directory fetch.
const directoryTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, logOutput, metricsListen, tracePath string

	flagSet := pflag.NewFlagSet("linedesk", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.StringVar(&metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address (overrides metrics.listen)")
	flagSet.StringVar(&tracePath, "trace", "", "append a CBOR trace of intake events to this file (overrides trace.path)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("linedesk")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("log-output") {
		cfg.Log.Output = logOutput
	}
	if flagSet.Changed("metrics-listen") {
		cfg.Metrics.Listen = metricsListen
	}
	if flagSet.Changed("trace") {
		cfg.Trace.Path = tracePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runConsole(ctx, cfg)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// runConsole wires the engine, transport, and console together and
// runs until the operator quits or ctx is cancelled.
func runConsole(ctx context.Context, cfg *config.Config) error {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// The status bar shows warnings and errors only; info records
	// would scroll away the help line on every poll.
	tuiHandler := consoleui.NewTUILogHandler(max(level, slog.LevelWarn))
	var handler slog.Handler = tuiHandler
	if cfg.Log.Output != "" {
		fileHandler, closeFile, err := logging.OpenFile(cfg.Log.Output, level)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", cfg.Log.Output, err)
		}
		defer closeFile()
		handler = logging.Fanout{tuiHandler, fileHandler}
	}
	logger := slog.New(handler)

	registry := metrics.New()

	client, err := messaging.NewClient(messaging.ClientConfig{
		ServerURL:  cfg.Server.URL,
		Token:      cfg.Server.Token,
		HTTPClient: &http.Client{Timeout: cfg.Server.RequestTimeout},
		Logger:     logger.With("component", "messaging"),
	})
	if err != nil {
		return err
	}
	pushURL, err := cfg.Server.WebSocketURL()
	if err != nil {
		return err
	}

	// The directory is loaded before the console starts so failures
	// reach stderr rather than a status bar nobody has seen yet.
	directoryContext, cancelDirectory := context.WithTimeout(ctx, directoryTimeout)
	users, err := client.Users(directoryContext)
	cancelDirectory()
	if err != nil {
		return fmt.Errorf("loading user directory from %s: %w", cfg.Server.URL, err)
	}

	var recorder engine.Recorder
	if cfg.Trace.Path != "" {
		traceRecorder, err := trace.Create(cfg.Trace.Path, nil)
		if err != nil {
			return err
		}
		defer traceRecorder.Close()
		recorder = traceRecorder
	}

	alerter := alert.New(alert.Config{
		Output:        os.Stderr,
		Terminal:      term.IsTerminal(int(os.Stderr.Fd())),
		Desktop:       cfg.Alerts.Desktop,
		Bell:          cfg.Alerts.Bell,
		ChimeOnUnread: cfg.Alerts.ChimeOnUnread,
	})

	sink := consoleui.NewProgramSink()
	syncEngine := engine.New(engine.Config{
		View:      sink,
		Alerts:    alerter,
		Recorder:  recorder,
		Directory: users,
		Metrics:   registry,
		Logger:    logger.With("component", "engine"),
	})

	pushLogger := logger.With("component", "push")
	adapter, err := transport.NewAdapter(transport.Config{
		Intake:  syncEngine,
		Fetcher: client,
		Dial: func(ctx context.Context) (transport.PushConn, error) {
			// The websocket library rejects clients with a Timeout;
			// the handshake is bounded by ctx instead.
			stream, err := messaging.Dial(ctx, messaging.StreamConfig{
				URL:    pushURL,
				Token:  cfg.Server.Token,
				Logger: pushLogger,
			})
			if err != nil {
				return nil, err
			}
			return stream, nil
		},
		PollInterval: cfg.Sync.PollInterval,
		ReconnectMin: cfg.Sync.ReconnectMin,
		ReconnectMax: cfg.Sync.ReconnectMax,
		Metrics:      registry,
		Logger:       logger.With("component", "transport"),
	})
	if err != nil {
		return err
	}

	model := consoleui.NewModel(consoleui.Options{
		Controller: console{engine: syncEngine, adapter: adapter},
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tuiHandler.SetProgram(program)
	sink.SetProgram(program)

	runContext, cancel := context.WithCancel(ctx)
	defer cancel()

	var group sync.WaitGroup
	if cfg.Metrics.Listen != "" {
		server := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metricsMux(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		group.Go(func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint failed", "listen", cfg.Metrics.Listen, "error", err)
			}
		})
		group.Go(func() {
			<-runContext.Done()
			shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancelShutdown()
			server.Shutdown(shutdownContext)
		})
	}
	group.Go(func() { syncEngine.Run(runContext) })
	group.Go(func() { adapter.Run(runContext) })

	_, err = program.Run()
	cancel()
	group.Wait()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func metricsMux(registry *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	return mux
}

// console connects the UI's actions to the engine and transport.
type console struct {
	engine  *engine.Engine
	adapter *transport.Adapter
}

// Select changes the selection and polls the new conversation at once
// instead of waiting for the next tick.
func (c console) Select(ctx context.Context, conversationID string) error {
	if err := c.engine.Select(ctx, conversationID); err != nil {
		return err
	}
	c.adapter.Refresh()
	return nil
}

func (c console) Send(ctx context.Context, conversationID, text string) error {
	return c.adapter.Send(ctx, conversationID, text)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `linedesk: operator console for a LINE messaging channel.

Loads its configuration from --config or $%s. The config names
the messaging server, sync intervals, alert behavior, and optional
metrics and trace outputs.

Usage:
  linedesk [flags]

Examples:
  # Run with the config named by LINEDESK_CONFIG
  linedesk

  # Run with an explicit config and keep a JSON log
  linedesk --config ~/.config/linedesk.yaml --log-output /tmp/linedesk.log

  # Record a compressed trace for a bug report
  linedesk --trace /tmp/session.trace.zst

Flags:
`, config.EnvironmentVariable)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// ABOUTME: CLI entrypoint for the sketchpad server: flags, .env, config layering, and signal handling.
// ABOUTME: Starts the web server and the optional metrics listener, then drains both on shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2389-research/sketchpad/config"
	"github.com/2389-research/sketchpad/metrics"
	"github.com/2389-research/sketchpad/web"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var version = "dev"

// cliFlags holds the values parsed from the command line. Only flags the user
// actually set are applied over the file and environment layers.
type cliFlags struct {
	configPath  string
	host        string
	port        int
	baseDir     string
	staticDir   string
	metricsAddr string
	logLevel    string
	logFormat   string
	showVersion bool
	showHelp    bool

	changed map[string]bool
}

func main() {
	loadDotEnvAuto()

	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		printHelp(os.Stderr, version)
		os.Exit(2)
	}

	if flags.showHelp {
		printHelp(os.Stdout, version)
		os.Exit(0)
	}
	if flags.showVersion {
		fmt.Printf("sketchpad %s\n", version)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, flags, os.LookupEnv, os.Stderr))
}

// parseFlags parses command-line arguments into cliFlags.
func parseFlags(args []string) (cliFlags, error) {
	defaults := config.Default()
	f := cliFlags{changed: make(map[string]bool)}

	fs := pflag.NewFlagSet("sketchpad", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file (default: $SKETCHPAD_CONFIG)")
	fs.StringVar(&f.host, "host", defaults.Host, "Interface to bind")
	fs.IntVarP(&f.port, "port", "p", defaults.Port, "Port to listen on")
	fs.StringVar(&f.baseDir, "base-dir", "", "Directory holding templates/index.html (default: executable's directory)")
	fs.StringVar(&f.staticDir, "static-dir", defaults.StaticDir, "Directory served under /static")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (default: disabled)")
	fs.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", defaults.LogFormat, "Log format: text or json")
	fs.BoolVar(&f.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&f.showHelp, "help", "h", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		return cliFlags{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	fs.Visit(func(fl *pflag.Flag) {
		f.changed[fl.Name] = true
	})
	return f, nil
}

// configPath returns the --config value, or SKETCHPAD_CONFIG when the flag was not given.
func configPath(f cliFlags, lookup func(string) (string, bool)) string {
	if f.changed["config"] || lookup == nil {
		return f.configPath
	}
	if v, ok := lookup(config.EnvPrefix + "CONFIG"); ok && v != "" {
		return v
	}
	return f.configPath
}

// loadConfig layers defaults, config file, environment, then explicitly set flags,
// and anchors the base directory to the executable when none was given.
func loadConfig(f cliFlags, lookup func(string) (string, bool)) (config.Config, error) {
	cfg, err := config.Load(configPath(f, lookup), lookup)
	if err != nil {
		return config.Config{}, err
	}

	if f.changed["host"] {
		cfg.Host = f.host
	}
	if f.changed["port"] {
		cfg.Port = f.port
	}
	if f.changed["base-dir"] {
		cfg.BaseDir = f.baseDir
	}
	if f.changed["static-dir"] {
		cfg.StaticDir = f.staticDir
	}
	if f.changed["metrics-addr"] {
		cfg.MetricsAddr = f.metricsAddr
	}
	if f.changed["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if f.changed["log-format"] {
		cfg.LogFormat = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.ResolveBaseDir(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// run loads configuration, builds the server, and serves until ctx is cancelled.
// Returns an exit code: 0 for success, 1 for failure.
func run(ctx context.Context, f cliFlags, lookup func(string) (string, bool), stderr io.Writer) int {
	cfg, err := loadConfig(f, lookup)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	var mc *metrics.Collectors
	if cfg.MetricsAddr != "" {
		mc = metrics.New()
	}

	srv, err := web.NewServer(web.ServerConfig{
		Addr:         cfg.Addr(),
		IndexFile:    cfg.IndexFile(),
		StaticDir:    cfg.StaticDir,
		StaticPrefix: cfg.StaticPrefix,
		Timeouts: web.Timeouts{
			ReadHeader: cfg.ReadHeaderTimeout,
			Read:       cfg.ReadTimeout,
			Write:      cfg.WriteTimeout,
			Idle:       cfg.IdleTimeout,
			Shutdown:   cfg.ShutdownTimeout,
		},
		Logger:  logger,
		Metrics: mc,
	})
	if err != nil {
		logger.WithError(err).Error("starting server")
		return 1
	}
	defer srv.Close()

	logger.WithFields(logrus.Fields{
		"index":  cfg.IndexFile(),
		"static": cfg.StaticDir,
		"prefix": cfg.NormalizedPrefix(),
	}).Info("serving")

	if mc != nil {
		metricsSrv := mc.NewServer(cfg.MetricsAddr)
		go serveMetrics(metricsSrv, logger)
		defer shutdownMetrics(metricsSrv, cfg.ShutdownTimeout, logger)
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.WithError(err).Error("server stopped")
		return 1
	}
	logger.Info("shut down cleanly")
	return 0
}

func serveMetrics(srv *http.Server, logger logrus.FieldLogger) {
	logger.WithField("addr", srv.Addr).Info("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("metrics listener stopped")
	}
}

func shutdownMetrics(srv *http.Server, timeout time.Duration, logger logrus.FieldLogger) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("metrics shutdown")
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/handygrpc/handygrpc/agent/internal/config"
	"github.com/handygrpc/handygrpc/agent/internal/scraper"
	"github.com/handygrpc/handygrpc/agent/internal/shipper"
	"github.com/handygrpc/handygrpc/agent/internal/spool"
	"github.com/handygrpc/handygrpc/pkg/types"
)

// logLevel is adjusted in place on config hot reload.
var logLevel = new(slog.LevelVar)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	app := cli.NewApp()
	app.Name = "handygrpc-agent"
	app.Usage = "Ship files to a handygrpc-server over gRPC"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config.yaml",
			Usage:   "path to the config `FILE`",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "send",
			Usage:     "Send each file over the unary path and print the response",
			ArgsUsage: "FILE...",
			Action:    sendCmd,
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:    "priority",
					Aliases: []string{"p"},
					Usage:   "the message priority",
				},
			},
		},
		{
			Name:      "stream",
			Usage:     "Queue each file on the Transfer stream and wait until it is drained",
			ArgsUsage: "FILE...",
			Action:    streamCmd,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "quick",
					Aliases: []string{"q"},
					Usage:   "send ahead of any queued backlog",
				},
				&cli.DurationFlag{
					Name:  "drain-timeout",
					Value: 30 * time.Second,
					Usage: "how long to wait for the queue to drain",
				},
			},
		},
		{
			Name:   "spool",
			Usage:  "Watch the spool directory and stream every file moved into it",
			Action: spoolCmd,
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "drain-timeout",
					Value: 30 * time.Second,
					Usage: "how long to wait for the queue to drain on shutdown",
				},
			},
		},
		{
			Name:   "status",
			Usage:  "Print the receiver counters read from metrics_url",
			Action: statusCmd,
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("handygrpc-agent failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the --config file and applies its log level.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	logLevel.Set(cfg.Agent.Level())
	return cfg, nil
}

func files(c *cli.Context) ([]string, error) {
	names := c.Args().Slice()
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: at least one FILE is required", c.Command.Name)
	}
	return names, nil
}

func sendCmd(c *cli.Context) error {
	names, err := files(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ship, err := shipper.New(cfg.Agent)
	if err != nil {
		return err
	}
	defer ship.Close(context.Background())

	p := types.Priority(c.Uint("priority"))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		resp, err := ship.SendUnary(c.Context, data, p)
		if err != nil {
			return fmt.Errorf("send %s: %w", name, err)
		}
		fmt.Printf("%s: %s\n", filepath.Base(name), resp)
	}
	return nil
}

func streamCmd(c *cli.Context) error {
	names, err := files(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ship, err := shipper.New(cfg.Agent)
	if err != nil {
		return err
	}
	if err := ship.Start(context.Background()); err != nil {
		return err
	}

	p := types.MinPriority
	if c.Bool("quick") {
		p = types.MaxPriority
	}
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			slog.Warn("agent: skipping file", "file", name, "err", err)
			continue
		}
		if err := ship.Ship(c.Context, data, p); err != nil {
			_ = drain(ship, c.Duration("drain-timeout"))
			return fmt.Errorf("queue %s: %w", name, err)
		}
		slog.Debug("agent: queued", "file", name, "bytes", len(data), "queue_len", ship.QueueLen())
	}
	return drain(ship, c.Duration("drain-timeout"))
}

func spoolCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ship, err := shipper.New(cfg.Agent)
	if err != nil {
		return err
	}
	if err := ship.Start(context.Background()); err != nil {
		return err
	}

	w, err := spool.New(cfg.Agent.Spool, func(ctx context.Context, _ string, data []byte, p types.Priority) error {
		return ship.Ship(ctx, data, p)
	})
	if err != nil {
		_ = drain(ship, 0)
		return err
	}

	// Hot reload applies the log level; connection settings need a restart.
	go func() {
		if err := config.Watch(c.Context, c.String("config"), func(updated *config.Config) {
			logLevel.Set(updated.Agent.Level())
		}); err != nil {
			slog.Error("agent: config watcher stopped", "err", err)
		}
	}()

	slog.Info("handygrpc-agent spooling",
		"dir", cfg.Agent.Spool.Dir,
		"server_endpoint", cfg.Agent.ServerEndpoint,
		"queue_capacity", cfg.Agent.QueueCapacity,
	)
	runErr := w.Run(c.Context)

	slog.Info("handygrpc-agent shutting down", "queue_len", ship.QueueLen())
	if err := drain(ship, c.Duration("drain-timeout")); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func statusCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Agent.MetricsURL == "" {
		return fmt.Errorf("status: agent.metrics_url is not set")
	}
	hc, err := scraper.NewHTTPClient(cfg.Agent.TLS.CAFile)
	if err != nil {
		return err
	}
	st, err := scraper.Scrape(c.Context, hc, cfg.Agent.MetricsURL)
	if err != nil {
		return err
	}
	_, err = st.WriteTo(os.Stdout)
	return err
}

// drain closes ship, waiting at most timeout for queued payloads. The pump
// runs on a background context, so a signal still lets the queue flush.
func drain(ship *shipper.Shipper, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return ship.Close(ctx)
}

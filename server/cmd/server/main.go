package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/handygrpc/handygrpc/pkg/transferpb"
	"github.com/handygrpc/handygrpc/server/internal/api"
	"github.com/handygrpc/handygrpc/server/internal/auth"
	"github.com/handygrpc/handygrpc/server/internal/config"
	"github.com/handygrpc/handygrpc/server/internal/receiver"
	"github.com/handygrpc/handygrpc/server/internal/stats"
	"github.com/handygrpc/handygrpc/server/internal/store"
	"github.com/handygrpc/handygrpc/server/internal/ws"
)

func main() {
	started := time.Now()
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("handygrpc-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Server.Level())

	slog.Info("config loaded",
		"grpc_port", cfg.Server.GRPCPort,
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"reassembly_ttl", cfg.Server.Reassembly.TTL,
		"max_pending", cfg.Server.Reassembly.MaxPending,
		"output_dir", cfg.Server.OutputDir,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Partial payload store with background TTL eviction.
	var sc *stats.Stats
	st, err := store.New(cfg.Server.Reassembly.TTL, cfg.Server.Reassembly.MaxPending, func(*store.Entry) { sc.Evicted() })
	if err != nil {
		slog.Error("failed to create reassembly store", "err", err)
		os.Exit(1)
	}
	sc = stats.New(st.Count)
	go st.Run(ctx)

	handle := receiver.Handler(receiver.Receipt)
	if cfg.Server.OutputDir != "" {
		if handle, err = receiver.FileSink(cfg.Server.OutputDir); err != nil {
			slog.Error("failed to prepare output dir", "err", err)
			os.Exit(1)
		}
	}

	// Delivered payloads feed /api/v1/payloads and the WebSocket hub.
	recent := api.NewRecent(cfg.Server.Feed.RecentPayloads)
	hub := ws.New(func() api.SummaryResponse { return api.BuildSummary(sc) }, cfg.Server.Feed.Interval)
	go hub.Run(ctx)
	handle = receiver.Observe(handle, func(p receiver.Payload) {
		ev := api.PayloadEvent{
			ID:         p.ID,
			Priority:   p.Priority,
			Bytes:      len(p.Data),
			RPC:        p.RPC,
			ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		}
		recent.Record(ev)
		hub.Publish(ev)
	})

	// gRPC server with optional bearer token authentication on both RPCs.
	token := cfg.Server.Auth.Token()
	if cfg.Server.Auth.Mode == auth.ModeBearer && token == "" {
		slog.Warn("auth mode is bearer but the token variable is empty; accepting all calls",
			"token_env", cfg.Server.Auth.TokenEnv)
	}
	grpcSrv := grpc.NewServer(
		grpc.UnaryInterceptor(auth.BearerUnaryInterceptor(cfg.Server.Auth.Mode, token)),
		grpc.StreamInterceptor(auth.BearerStreamInterceptor(cfg.Server.Auth.Mode, token)),
		grpc.MaxRecvMsgSize(cfg.Server.MaxMessageBytes),
	)
	transferpb.RegisterDataTransferServer(grpcSrv, receiver.New(st, sc, handle))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		slog.Error("failed to listen on gRPC port",
			"port", cfg.Server.GRPCPort, "err", err)
		os.Exit(1)
	}

	go func() {
		slog.Info("gRPC receiver listening", "port", cfg.Server.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()

	httpMux := http.NewServeMux()
	httpMux.Handle("/metrics", sc)
	httpMux.Handle("/api/v1/", api.New(st, sc, recent, started))
	httpMux.Handle("/ws/payloads", hub)
	httpMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("handygrpc-server shutting down", "pending_partials", st.Count())
	grpcSrv.GracefulStop()
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

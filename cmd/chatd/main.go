package main

import (
	"chat-sync/auth"
	chatgrpc "chat-sync/grpc"
	"chat-sync/grpc/wire"
	"chat-sync/internal"
	"chat-sync/runtime"
	"chat-sync/services"
	"chat-sync/storage"
	"chat-sync/ws"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpclog "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"github.com/vmihailenco/msgpack"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const (
	socketEndpoint  = "/socket"
	inspectEndpoint = "/inspect"
	shutdownTimeout = 5 * time.Second
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatd terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires storage, the chat service and both transports, then blocks until a signal or a server failure.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, inspectEndpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugPort, inspectEndpoint, ChatMapper)
	}

	stor := storage.NewStorageLogging(
		storage.NewLocalCache(storage.NewBadgerStorage(db, logger), config.ChannelCacheSize, config.ChannelCacheTTL),
		logger,
	)
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = stor.Close()
	}()

	// 3. Business layer
	registry := runtime.NewRegistry(logger)
	chatService := services.NewChatService(stor, registry, logger)
	if err = chatService.Seed(ctx, config.Channels()); err != nil {
		return exitRuntime, err
	}

	var issuer *auth.Issuer
	unary := []grpc.UnaryServerInterceptor{grpclog.UnaryLoggingInterceptor(logger)}
	var stream []grpc.StreamServerInterceptor
	if config.AuthEnabled() {
		issuer = auth.NewIssuer([]byte(config.AuthSecret), config.AuthTokenDuration)
		unary = append(unary, issuer.UnaryInterceptor)
		stream = append(stream, issuer.StreamInterceptor)
	} else {
		logger.Warn("AUTH_SECRET is empty, calls are not authenticated")
	}

	errChan := make(chan error, 2)

	// 4. gRPC data service
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(unary...), grpc.ChainStreamInterceptor(stream...))
	wire.RegisterDataServiceServer(s, chatgrpc.NewChatServer(logger, chatService, config.ConnectionBufferSize, config.DeliveryTimeout))
	go func() {
		logger.Info("Starting gRPC server", "address", address, "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. WebSocket push
	mux := http.NewServeMux()
	mux.Handle(socketEndpoint, ws.NewHub(chatService, issuer, config.ConnectionBufferSize, config.DeliveryTimeout, config.KeepAlive, logger))
	socketServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.SocketPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting WebSocket server", "address", socketServer.Addr, "endpoint", socketEndpoint)
		if err := socketServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("websocket server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		s.Stop()
		_ = socketServer.Close()
		return exitRuntime, err
	}

	// 7. Graceful shutdown. Hijacked sockets are not tracked by Shutdown, their request contexts end with the server.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = socketServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("WebSocket server shutdown", "error", err)
	}
	s.GracefulStop()
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// ChatMapper renders channel and message records in the Badger inspector.
func ChatMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	prefix, _, _ := strings.Cut(key, ":")
	var decoded map[string]any
	switch prefix {
	case "ch", "msg":
		if err := msgpack.Unmarshal(val, &decoded); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
	default:
		row.Type = "INDEX"
		row.Detail = string(val)
		return row
	}
	if prefix == "ch" {
		row.Type = "CHANNEL"
		row.Detail = fmt.Sprint(decoded["name"])
		return row
	}
	row.Type = "MESSAGE"
	row.Detail = fmt.Sprintf("%v: %v", decoded["author"], decoded["body"])
	return row
}

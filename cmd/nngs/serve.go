package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/runstore"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/logger"
)

// servers holds the optional inspection endpoints of a run
type servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

func startServers(store *runstore.Store, httpAddr, grpcAddr string) (*servers, error) {
	s := &servers{}

	if grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return nil, fmt.Errorf("listen for gRPC on %s: %w", grpcAddr, err)
		}
		s.grpcServer = grpc.NewServer()
		runstore.RegisterExperimentServiceServer(s.grpcServer, runstore.NewGRPCServer(store))
		go func() {
			logger.Info("gRPC server listening", "addr", lis.Addr().String())
			if err := s.grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	if httpAddr != "" {
		lis, err := net.Listen("tcp", httpAddr)
		if err != nil {
			s.shutdown()
			return nil, fmt.Errorf("listen for HTTP on %s: %w", httpAddr, err)
		}
		s.httpServer = &http.Server{
			Handler:           runstore.NewHTTPServer(store).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", lis.Addr().String())
			if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "error", err)
			}
		}()
	}
	return s, nil
}

func (s *servers) running() bool {
	return s.grpcServer != nil || s.httpServer != nil
}

func (s *servers) shutdown() {
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
	}
}

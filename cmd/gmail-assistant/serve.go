package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var enableStdio bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP, chat and websocket endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, enableStdio)
		},
	}
	cmd.Flags().BoolVar(&enableStdio, "stdio", false, "Also serve MCP over stdio (disables stderr logging unless --log-file is set)")

	return cmd
}

func runServe(parent context.Context, flags *rootFlags, enableStdio bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, flags, enableStdio)
	if err != nil {
		return err
	}
	defer a.close()

	a.authorizeIfNeeded()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.serveHTTP(gctx, &http.Server{Handler: a.mux(true)})
	})

	if enableStdio {
		g.Go(func() error {
			defer cancel()
			a.logger.Info("Starting stdio transport")
			err := a.mcpServer().Run(gctx, &mcp.StdioTransport{})
			a.logger.Info("Stdio transport stopped")
			if err != nil && gctx.Err() == nil {
				return fmt.Errorf("srv.Run failed: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	if ctx.Err() != nil && parent.Err() == nil {
		a.logger.Info("Shutdown signal received")
	}
	if err != nil {
		a.logger.Error("Server stopped with error", zap.Error(err))
	}

	return err
}

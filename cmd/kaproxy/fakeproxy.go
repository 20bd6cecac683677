package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/kaproxy-go/component"
	"github.com/kbukum/kaproxy-go/kaproxytest"
	"github.com/kbukum/kaproxy-go/logger"
)

func newFakeProxyCmd(a *app) *cobra.Command {
	var (
		port       int
		partitions int
		tokens     []string
	)

	cmd := &cobra.Command{
		Use:   "fake-proxy",
		Short: "Serve an in-memory fake proxy until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Fake
			if cmd.Flags().Changed("port") || cfg.Server.Port == 0 {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("partitions") {
				cfg.Partitions = partitions
			}
			if cmd.Flags().Changed("tokens") {
				cfg.Tokens = tokens
			}

			proxy := kaproxytest.New(cfg, a.log)
			reg := component.NewRegistry()
			if err := reg.Register(proxy); err != nil {
				return err
			}
			return serve(cmd.Context(), a.log, reg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "listen port (0 picks a free port)")
	cmd.Flags().IntVar(&partitions, "partitions", 4, "partitions per topic")
	cmd.Flags().StringSliceVar(&tokens, "tokens", nil, "accepted tokens (empty accepts any)")
	return cmd
}

// serve starts the registry, blocks until ctx is done, then stops it.
func serve(ctx context.Context, log *logger.Logger, reg *component.Registry) error {
	if err := reg.StartAll(ctx); err != nil {
		return err
	}
	log.Info("serving, press Ctrl+C to stop")
	<-ctx.Done()
	return reg.StopAll(context.WithoutCancel(ctx))
}

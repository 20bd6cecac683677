package main

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/kaproxy-go/config"
	"github.com/kbukum/kaproxy-go/kaproxy"
	"github.com/kbukum/kaproxy-go/logger"
	"github.com/kbukum/kaproxy-go/observability"
)

// app holds state shared by the subcommands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	envFile    string
	address    string
	token      string
	debug      bool

	cfg      CLIConfig
	log      *logger.Logger
	metrics  *observability.Metrics
	shutdown []func(context.Context) error
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "kaproxy",
		Short: "Produce to and consume from a kaproxy HTTP proxy",
		Long: `kaproxy talks to a kaproxy HTTP proxy in front of a Kafka cluster.

Configuration is read from config.yml, .env.kaproxy or .env, and KAPROXY_*
environment variables (e.g. KAPROXY_PROXY_ADDRESS, KAPROXY_PROXY_TOKEN).
Flags override every other source.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(context.WithoutCancel(cmd.Context()))
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: search ./config, ./cmd/kaproxy and .)")
	flags.StringVar(&a.envFile, "env-file", "", "env file to load before reading KAPROXY_* variables")
	flags.StringVar(&a.address, "address", "", "proxy address (default "+defaultAddress+")")
	flags.StringVar(&a.token, "token", "", "proxy access token")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newProduceCmd(a),
		newConsumeCmd(a),
		newFakeProxyCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads configuration, initializes logging and, when enabled,
// telemetry export.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	if err := config.LoadConfig(serviceName, &a.cfg, opts...); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("address") {
		a.cfg.Proxy.Address = a.address
	}
	if flags.Changed("token") {
		a.cfg.Proxy.Token = a.token
	}
	if flags.Changed("debug") {
		a.cfg.Debug = a.debug
		if a.debug {
			a.cfg.Logging.Level = "debug"
		}
	}

	a.cfg.ApplyDefaults()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger.Init(&a.cfg.Logging)
	a.log = logger.GetGlobalLogger().
		WithFields(logger.Fields("run_id", uuid.NewString())).
		WithComponent("cli")

	if a.cfg.Telemetry.Enabled {
		return a.initTelemetry(cmd.Context())
	}
	return nil
}

func (a *app) initTelemetry(ctx context.Context) error {
	tp, err := observability.InitTracer(ctx, a.cfg.Telemetry.Tracer)
	if err != nil {
		return err
	}
	a.shutdown = append(a.shutdown, tp.Shutdown)

	mp, err := observability.InitMeter(ctx, a.cfg.Telemetry.Meter)
	if err != nil {
		return err
	}
	a.shutdown = append(a.shutdown, mp.Shutdown)

	a.metrics, err = observability.NewMetrics(observability.Meter(serviceName))
	return err
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, a.shutdown[i](ctx))
	}
	a.shutdown = nil
	return errors.Join(errs...)
}

// newClient builds a client from the loaded proxy configuration.
func (a *app) newClient() (*kaproxy.Client, error) {
	opts := []kaproxy.Option{kaproxy.WithLogger(a.log.WithComponent("kaproxy"))}
	if a.metrics != nil {
		opts = append(opts, kaproxy.WithMetrics(a.metrics))
	}
	return kaproxy.NewFromConfig(a.cfg.Proxy, opts...)
}

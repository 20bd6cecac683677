package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/kaproxy-go/errors"
	"github.com/kbukum/kaproxy-go/kaproxy"
	"github.com/kbukum/kaproxy-go/logger"
	"github.com/kbukum/kaproxy-go/resilience"
)

// consumedMessage is the printed form of a message.
type consumedMessage struct {
	Value    string         `json:"value"`
	Encoding string         `json:"encoding,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func newConsumeCmd(a *app) *cobra.Command {
	var (
		blocking time.Duration
		follow   bool
		limit    int
		retries  int
	)

	cmd := &cobra.Command{
		Use:   "consume <group> <topic>",
		Short: "Fetch the next message of a consumer group",
		Long: `Fetch the next message of a consumer group. Without --follow one request
is made and "no message" is reported when the topic has none. With --follow
the command polls until interrupted or --max messages were printed.`,
		Example: `  kaproxy consume test-group test-topic
  kaproxy consume test-group test-topic --follow --blocking-timeout 5s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			group, topic := args[0], args[1]
			if !follow {
				msg, err := client.Consume(cmd.Context(), group, topic, kaproxy.WithBlockingTimeout(blocking))
				if err != nil {
					return err
				}
				if msg == nil {
					fmt.Fprintln(a.errOut, "no message")
					return nil
				}
				return printMessage(a, msg)
			}
			return a.follow(cmd.Context(), client, group, topic, blocking, limit, retries)
		},
	}

	cmd.Flags().DurationVar(&blocking, "blocking-timeout", kaproxy.DefaultBlockingTimeout, "how long the proxy waits for a message (min 1s)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling for messages")
	cmd.Flags().IntVar(&limit, "max", 0, "with --follow, stop after this many messages (0 = unlimited)")
	cmd.Flags().IntVar(&retries, "retries", resilience.DefaultRetryConfig().MaxAttempts, "with --follow, attempts per poll on transport failures")
	return cmd
}

// follow polls until ctx is done or limit messages were printed. Transport
// failures are retried with backoff up to retries attempts per poll; other
// errors stop the loop.
func (a *app) follow(ctx context.Context, client *kaproxy.Client, group, topic string, blocking time.Duration, limit, retries int) error {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = retries
	retry.RetryIf = errors.IsTransport
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		a.log.Warn("poll failed, retrying", logger.Fields(
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
			logger.FieldError, err.Error(),
		))
	}

	poll := func(ctx context.Context) (*kaproxy.Message, error) {
		return client.Consume(ctx, group, topic, kaproxy.WithBlockingTimeout(blocking))
	}

	printed := 0
	for limit == 0 || printed < limit {
		msg, err := resilience.Retry(ctx, retry, poll)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if msg == nil {
			continue
		}
		if err := printMessage(a, msg); err != nil {
			return err
		}
		printed++
	}
	return nil
}

func printMessage(a *app, msg *kaproxy.Message) error {
	return printJSON(a, consumedMessage{
		Value:    string(msg.Value),
		Encoding: msg.Encoding,
		Metadata: msg.Metadata,
	})
}

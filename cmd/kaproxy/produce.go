package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/kaproxy-go/kaproxy"
)

func newProduceCmd(a *app) *cobra.Command {
	var (
		partitioner string
		noReplicate bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "produce <topic> <key> <value>",
		Short: "Publish one message",
		Example: `  kaproxy produce test-topic test_key test_value
  kaproxy produce events "" payload --partitioner random`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Produce(cmd.Context(), args[0], args[1], args[2],
				kaproxy.WithPartitioner(kaproxy.Partitioner(partitioner)),
				kaproxy.WithReplicate(!noReplicate),
				kaproxy.WithProduceTimeout(timeout),
			)
			if err != nil {
				return err
			}
			return printJSON(a, res)
		},
	}

	cmd.Flags().StringVar(&partitioner, "partitioner", string(kaproxy.PartitionerHash), "partitioner: hash or random")
	cmd.Flags().BoolVar(&noReplicate, "no-replicate", false, "do not replicate to other datacenters")
	cmd.Flags().DurationVar(&timeout, "timeout", kaproxy.DefaultProduceTimeout, "produce timeout")
	return cmd
}

func printJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

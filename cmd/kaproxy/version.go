package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/kaproxy-go/version"
)

func newVersionCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if asJSON {
				return printJSON(a, info)
			}
			_, err := fmt.Fprintf(a.out, "kaproxy %s\n", info.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

package main

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"fixture-graph/internal/graph"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/formatter"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema <domain>",
		Short:     "Print the GraphQL schema of a domain",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{graph.Food, graph.Wallet},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := graph.Load(args[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchema(s)
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
}

func newOpsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ops <domain>",
		Short: "List the root operations a domain answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local := *opts
			local.noSeed = true
			fc, err := facadeFor(cmd.Context(), &local, args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, op := range fc.Operations() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", op.Name, op.Kind, op.Entity)
			}
			return w.Flush()
		},
	}
}

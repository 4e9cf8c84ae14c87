package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"fixture-graph/internal/graph"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"zombiezen.com/go/graphql-server/graphql"
)

func newQueryCmd(opts *options) *cobra.Command {
	var (
		rawJSON   bool
		variables string
		operation string
	)
	cmd := &cobra.Command{
		Use:     "query <domain> [document]",
		Aliases: []string{"exec"},
		Short:   "Execute a GraphQL query or mutation",
		Long: `Execute a GraphQL document against the food or wallet backend.

Examples:
  fixturectl query food '{ restaurants { name menu { name price } } }'
  fixturectl query wallet '{ getWallets { name balance } }'
  fixturectl query food -v '{"id":"x"}' 'query Q($id: ID!) { order(id: $id) { status } }'
  echo '{ users { username } }' | fixturectl query food`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := ""
			if len(args) == 2 {
				doc = args[1]
			} else {
				stdin, err := readFromStdin(cmd.InOrStdin())
				if err != nil {
					return err
				}
				doc = stdin
			}
			if doc == "" {
				return fmt.Errorf("no query provided (pass as argument or pipe to stdin)")
			}

			req := graphql.Request{Query: doc, OperationName: operation}
			if variables != "" {
				if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
					return fmt.Errorf("invalid variables JSON: %w", err)
				}
			}

			fc, err := facadeFor(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			srv, err := graph.NewServer(fc)
			if err != nil {
				return err
			}

			resp := graph.Execute(cmd.Context(), srv, req)
			out, err := json.Marshal(resp)
			if err != nil {
				return err
			}
			if !rawJSON {
				out = pretty.Color(pretty.Pretty(out), nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))

			if len(resp.Errors) > 0 {
				return fmt.Errorf("graphql: %d error(s)", len(resp.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rawJSON, "json", false, "Output raw JSON (no formatting)")
	cmd.Flags().StringVarP(&variables, "variables", "v", "", "Query variables as JSON string")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Operation name (for multi-operation documents)")
	return cmd
}

// readFromStdin returns piped input, or "" when stdin is a terminal.
func readFromStdin(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("checking stdin: %w", err)
		}
		if stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

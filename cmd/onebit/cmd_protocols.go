package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"onebit/internal/protocol"
)

func newProtocolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocols",
		Short: "List the available protocols",
		Long: `List the available protocols.

Each protocol is selectable by its canonical name or any alias, with
both 'onebit run --protocol' and 'onebit check --protocol'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			defs := protocol.Definitions()
			out := cmd.OutOrStdout()

			if jsonOut {
				type entry struct {
					Name        string   `json:"name"`
					Aliases     []string `json:"aliases,omitempty"`
					Description string   `json:"description"`
				}
				entries := make([]entry, 0, len(defs))
				for _, d := range defs {
					entries = append(entries, entry{
						Name:        d.Name,
						Aliases:     d.Aliases,
						Description: d.Description,
					})
				}
				return json.NewEncoder(out).Encode(entries)
			}

			for _, d := range defs {
				name := d.Name
				if len(d.Aliases) > 0 {
					name = fmt.Sprintf("%s (%s)", d.Name, strings.Join(d.Aliases, ", "))
				}
				fmt.Fprintf(out, "%-28s %s\n", name, d.Description)
			}
			return nil
		},
	}

	return cmd
}

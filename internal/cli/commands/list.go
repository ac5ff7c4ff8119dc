package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listNames bool

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Long: `List every plugin found on the search path, one per line, ordered by URI.

By default the plugin URIs are printed. With --names the plugin names are
printed instead; plugins without a name fall back to their URI.`,
		Example: `  # List plugin URIs
  lv2meta list

  # List plugin names
  lv2meta list --names

  # Search a specific directory
  lv2meta list --lv2-path ~/src/plugins

  # Machine-readable output
  lv2meta list --format json`,
		Args: cobra.NoArgs,
		RunE: runListCommand,
	}

	cmd.Flags().BoolVarP(&listNames, "names", "n", false, "Print plugin names instead of URIs")
	return cmd
}

type listEntry struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

func runListCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	plugins := s.world.Plugins()
	entries := make([]listEntry, 0, len(plugins))
	for _, p := range plugins {
		entry := listEntry{URI: p.URI()}
		if listNames || s.json() {
			name, ok, err := s.resolver.Name(ctx, p)
			if err != nil {
				return err
			}
			if ok {
				entry.Name = name
			}
		}
		entries = append(entries, entry)
	}

	out := cmd.OutOrStdout()
	if s.json() {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		if listNames && e.Name != "" {
			fmt.Fprintln(out, e.Name)
			continue
		}
		fmt.Fprintln(out, e.URI)
	}
	return nil
}

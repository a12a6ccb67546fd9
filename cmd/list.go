package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/practicals/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List the pages shown in the navigation sidebar",
	Long: `List the pages of the page directory the way the sidebar shows them: the
file each link points at and its label, in menu order.

Examples:
  practicals list                    # Table
  practicals list -f json            # JSON
  practicals list --pages ./site -f yaml`,
	RunE: runList,
}

var listFlags *StandardFlags

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags = AddStandardFlags(listCmd, "output")
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, reg := openPages(cfg)
	entries, err := reg.Entries(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(listFlags.Format) {
	case "json":
		return outputListJSON(out, entries)
	case "yaml":
		return outputListYAML(out, entries)
	case "table":
		return outputListTable(out, entries)
	default:
		return fmt.Errorf("unsupported format: %s", listFlags.Format)
	}
}

func outputListJSON(w io.Writer, entries []types.PageEntry) error {
	if entries == nil {
		entries = []types.PageEntry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func outputListYAML(w io.Writer, entries []types.PageEntry) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(entries)
}

func outputListTable(w io.Writer, entries []types.PageEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No pages found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tLABEL")
	fmt.Fprintln(tw, "----\t-----")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", entry.FileName, entry.DisplayLabel)
	}
	fmt.Fprintf(tw, "\nTotal: %d pages\n", len(entries))

	return tw.Flush()
}

package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shellstorm/server/pkg/scenario"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scenarios",
	Long:  `List all registered scenarios with their descriptions`,
	RunE:  listScenarios,
}

func listScenarios(cmd *cobra.Command, args []string) error {
	names := scenario.DefaultRegistry.List()
	if len(names) == 0 {
		fmt.Println("No scenarios registered")
		return nil
	}
	sort.Strings(names)

	// Create tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-----------")

	for _, name := range names {
		sc, err := scenario.DefaultRegistry.Get(name)
		if err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", name, sc.Description())
	}

	return w.Flush()
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interop-labs/modreg/internal/generator"
	"github.com/interop-labs/modreg/internal/registry"
)

var (
	listNoDev bool
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show package order and module factories",
	Long: `Show the packages in dependency order and the module factories in the order
they would be written, without touching the registry file.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listNoDev, "no-dev", false, "Skip development packages")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a factory record for JSON output.
type listEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Module      string `json:"module"`
	Priority    int    `json:"priority"`
	Package     string `json:"package"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := setup(cmd)
	if err != nil {
		return err
	}

	plan, err := generator.New(appFs, cfg, buildVersion).Plan(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		entries := make([]listEntry, 0, len(plan.Records))
		for _, r := range plan.Records {
			entries = append(entries, listEntry{
				Name:        r.Name,
				Description: r.Description,
				Module:      r.Module,
				Priority:    r.Priority,
				Package:     r.Package,
			})
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render(cfg.ProjectDir))
	fmt.Fprintln(out)
	registry.PrintPlan(out, plan)
	return nil
}

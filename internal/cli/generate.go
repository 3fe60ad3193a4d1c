package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/interop-labs/modreg/internal/generator"
)

var (
	generateOutput string
	generateFormat string
	generateNoDev  bool
	generateDryRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the module registry",
	Long: `Read the lock file and root manifest, order packages by their dependencies,
collect the module factories they declare and replace the registry file with
the factories sorted by priority.

Nothing is written when no package declares a factory.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Registry file path (default from settings)")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "Registry format (php, hcl)")
	generateCmd.Flags().BoolVar(&generateNoDev, "no-dev", false, "Skip development packages")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Print the registry instead of writing it")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := setup(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var dryRun io.Writer
	if generateDryRun {
		dryRun = out
	} else {
		fmt.Fprintln(out, okStyle.Render("Compiling modules list"))
	}

	res, err := generator.New(appFs, cfg, buildVersion).Run(ctx, dryRun)
	if err != nil {
		return err
	}

	switch {
	case generateDryRun && len(res.Plan.Records) == 0:
		fmt.Fprintln(cmd.ErrOrStderr(), "No module factories declared.")
	case res.Written:
		fmt.Fprintf(out, "Wrote %d module factories to %s\n", len(res.Plan.Records), res.Path)
	case !generateDryRun:
		fmt.Fprintln(out, dimStyle.Render("No module factories declared; registry left untouched."))
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/interop-labs/modreg/internal/generator"
)

// ErrInvalid is returned by validate when any input fails its schema.
var ErrInvalid = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the lock file and root manifest against their schemas",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}

	results, err := generator.New(appFs, cfg, buildVersion).Validate()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "Nothing to validate.")
		return nil
	}

	paths := make([]string, 0, len(results))
	for p := range results {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	failed := false
	for _, p := range paths {
		res := results[p]
		if res.Valid {
			fmt.Fprintf(out, "%s %s\n", okStyle.Render("ok"), p)
			continue
		}
		failed = true
		fmt.Fprintf(out, "%s %s\n", errStyle.Render("invalid"), p)
		for _, issue := range res.Issues {
			path := issue.Path
			if path == "" {
				path = "/"
			}
			fmt.Fprintf(out, "  %s: %s\n", path, issue.Message)
		}
	}
	if failed {
		return ErrInvalid
	}
	return nil
}

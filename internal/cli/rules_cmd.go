package cli

import (
	"fmt"

	"github.com/alexanderramin/parada/internal/cli/formatter"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/spf13/cobra"
)

func newRulesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active classification rules as YAML",
		Long: `Rules prints the phase, equipment and keyword tables used to classify
records. The output can be edited and passed back through rules_file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.Rules.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(newRulesCheckCmd())
	return cmd
}

func newRulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a rules file without using it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := importer.LoadRulesFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d code rules, %d keyword rules, %d equipment types\n",
				formatter.StyleGreen.Render("✔"), args[0],
				len(rs.CodeRules), len(rs.KeywordRules), len(rs.AssetTypes))
			return nil
		},
	}
}

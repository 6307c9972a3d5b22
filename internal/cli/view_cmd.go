package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse the phase hierarchy interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Interactive {
				return errors.New("view needs a terminal; use 'parada tree' instead")
			}
			p := tea.NewProgram(newViewModel(app),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmdContext(cmd)),
			)
			_, err := p.Run()
			return err
		},
	}
}

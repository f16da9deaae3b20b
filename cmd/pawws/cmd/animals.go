package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawws/pawws/internal/app"
	"github.com/spf13/cobra"
)

func ImportAnimalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-animals <dir>",
		Short: "Import animal profiles from markdown files with frontmatter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return fmt.Errorf("failed to read profiles directory: %w", err)
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				var imported int
				for _, entry := range entries {
					if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
						continue
					}

					path := filepath.Join(args[0], entry.Name())
					source, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("failed to read %s: %w", path, err)
					}

					animal, err := a.AnimalService.ImportProfile(cmd.Context(), source)
					if err != nil {
						return fmt.Errorf("failed to import %s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", entry.Name(), animal.Name, animal.ID)
					imported++
				}

				fmt.Fprintf(cmd.OutOrStdout(), "imported %d animals\n", imported)
				return nil
			})
		},
	}
}

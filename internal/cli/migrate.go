package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewMigrateCommand aplica, revierte o lista las migraciones embebidas.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Administra el esquema de base de datos",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := rootOpts.OpenMigrator(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			out := cmd.OutOrStdout()
			switch args[0] {
			case "up":
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "migraciones aplicadas: %d\n", n)
			case "down":
				if err := m.Down(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "última migración revertida")
			case "status":
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSIÓN\tARCHIVO\tESTADO")
				for _, s := range statuses {
					state := "pendiente"
					if s.Applied {
						state = "aplicada"
					}
					fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Source, state)
				}
				return w.Flush()
			}
			return nil
		},
	}
}

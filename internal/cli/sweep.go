package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type sweepOptions struct {
	actor string
}

// NewSweepCommand ejecuta un barrido de umbrales inmediato, fuera del cron.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evalúa umbrales y crea o refresca alertas de stock bajo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := rootOpts.OpenServices(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			actor := opts.actor
			if actor == "" {
				actor = svc.SystemActor
			}
			res, err := svc.Alerts.EvaluateThresholds(ctx, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revisados: %d  creadas: %d  refrescadas: %d  resueltas: %d\n",
				res.Scanned, res.Created, res.Refreshed, res.Resolved)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.actor, "actor", "", "actor registrado en las alertas (por defecto ALERT_SYSTEM_ACTOR)")
	return cmd
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/bookstore-inventory/internal/application/catalogimport"
)

type importOptions struct {
	file    string
	charset string
	actor   string
}

// NewImportCommand carga un CSV external_id,name,price,quantity[,reorder_level,category].
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importa ítems y cantidades desde un CSV de catálogo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(opts.file)
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer f.Close()

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
			importer := catalogimport.NewImporter(svc.Catalog, svc.Ledger, svc.Log)
			rep, err := importer.Import(ctx, f, catalogimport.Options{Charset: opts.charset, ActorID: actor})
			fmt.Fprint(cmd.OutOrStdout(), rep.String())
			if err != nil {
				return err
			}
			if len(rep.Failures) > 0 {
				return fmt.Errorf("%d filas con error", len(rep.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "ruta del CSV")
	cmd.Flags().StringVar(&opts.charset, "charset", "utf-8", "codificación del archivo (utf-8, latin1, windows-1252)")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "actor de la auditoría (por defecto ALERT_SYSTEM_ACTOR)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crea o actualiza el esquema de la base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = b.close() }()

			if err := b.migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("schema migrated", map[string]any{"storage": cfg.Storage})
			return nil
		},
	}
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga el dataset canónico",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = b.close() }()

			ctx := cmd.Context()
			if err := b.migrate(ctx); err != nil {
				return err
			}
			if reset {
				if err := b.reset(ctx); err != nil {
					return err
				}
			}
			if err := b.store.Seed(ctx); err != nil {
				return err
			}
			log.Info("dataset seeded", map[string]any{"storage": cfg.Storage, "reset": reset})
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "empty every table before seeding")
	return cmd
}

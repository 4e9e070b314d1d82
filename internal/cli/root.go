package cli

import (
	"os"

	"github.com/spf13/cobra"

	"petclinic/internal/config"
	"petclinic/internal/platform/logger"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:          "petclinic",
		Short:        "Petclinic: registros de la clínica veterinaria",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "YAML config file (default $CONFIG_FILE)")

	cmd.AddCommand(newServeCmd(&g), newMigrateCmd(&g), newSeedCmd(&g))
	return cmd
}

func (g *globalFlags) load() (config.Config, logger.Logger, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	return cfg, log, nil
}

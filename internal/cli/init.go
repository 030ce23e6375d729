package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize mintfactory storage",
		Long:  "Create configuration and data directories, write a default config.yaml,\nthen initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// setup has already created the config directory and file.
			store, err := a.openStore()
			if err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}
			if err := store.Close(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}
			return a.print(cmd, map[string]string{
				"config_dir": a.dirs.Config,
				"data_dir":   a.dirs.Data,
			}, func(p *printer) {
				p.line("Mintfactory initialized successfully")
				p.field("config", a.dirs.Config)
				p.field("data", a.dirs.Data)
			})
		},
	}
}

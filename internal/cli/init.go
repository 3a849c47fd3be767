package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/moodlog/internal/paths"
)

type initResult struct {
	ConfigFile string `json:"config_file"`
	DataDir    string `json:"data_dir"`
	Backend    string `json:"backend"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and data directories",
		Long: "Write a default config.yaml (with a fresh session secret) if none\n" +
			"exists, and initialize the storage backend. Running init again is safe.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := initResult{
				ConfigFile: paths.ConfigFile(a.configDir),
				DataDir:    a.dataDir,
				Backend:    a.cfg.Backend,
			}
			if a.flags.jsonMode {
				return printJSON(cmd, res)
			}
			return printLines(cmd,
				"moodlog initialized",
				"  config: "+res.ConfigFile,
				"  data:   "+res.DataDir,
			)
		},
	}
}

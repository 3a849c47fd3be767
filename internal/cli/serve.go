package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/moodlog/internal/api"
	"github.com/mesh-intelligence/moodlog/internal/logger"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mood analysis HTTP endpoint",
		Long: "Serve POST /api/analyze backed by the configured classifier, for\n" +
			"clients configured with classifier.provider: remote. Stops on interrupt.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSetup: setupConfig},
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			level := a.cfg.LogLevel
			if a.flags.logLevel != "" {
				level = a.flags.logLevel
			}
			log := logger.Setup(logger.Config{
				Level:  level,
				Format: logger.FormatJSON,
				Output: cmd.ErrOrStderr(),
			})

			ctx := logger.WithContext(cmd.Context(), log)
			classifier, err := a.newClassifier(ctx, a.cfg, log)
			if err != nil {
				return userError(fmt.Errorf("set up classifier: %w", err))
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return sysError(fmt.Errorf("listen on %s: %w", addr, err))
			}
			handler := api.NewRouter(classifier, a.cfg.Classifier.Timeout, log)
			if err := api.Serve(ctx, ln, handler, log); err != nil {
				return sysError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}

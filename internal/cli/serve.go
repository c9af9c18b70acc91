package cli

import (
	"github.com/spf13/cobra"

	"github.com/kirinyoku/seatplan/internal/app"
	"github.com/kirinyoku/seatplan/internal/config"
)

func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the plan server",
		Long:  `Run the HTTP server that stores shared plans. It is configured through environment variables or a .env file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, c.slogger())
			if err != nil {
				return err
			}

			return a.Run(cmd.Context())
		},
	}
}

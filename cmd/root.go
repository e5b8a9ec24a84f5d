package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "appsolution",
	Short: "Digital goods storefront backend",
	Long: `A service that manages the product catalog, blog content, purchase
ledger and contact inquiries behind the storefront, and a worker that
applies payment gateway events and maintains the search index.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			log.Error().Err(err).Msg("Failed to display help")
		}
	},
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
}

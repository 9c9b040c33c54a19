package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cashier",
	Short: "Wallet ledger and transaction-approval service",
	Long: `cashier runs the wallet core of the gaming platform: the account
ledger, the deposit/withdrawal approval workflow, bet settlement and the
admin reporting API.`,
}

// Execute runs the CLI
func Execute() {
	log.SetFormatter(&log.JSONFormatter{})

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

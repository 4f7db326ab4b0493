package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "morag",
	Short: "Morag-cloud is a server for migrating documents between realms.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Usage()
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8075", "The morag-cloud server whose API will be queried.")
	rootCmd.PersistentFlags().String("requester", "", "The user id to act as when calling the server API.")
	rootCmd.PersistentFlags().Bool("dry-run", false, "When set, print the API request without sending it.")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(migrationCmd)
	rootCmd.AddCommand(realmCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(webhookCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

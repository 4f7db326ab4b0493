package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/morag-io/morag-cloud/model"
)

func init() {
	webhookCreateCmd.Flags().String("url", "", "The URL to deliver state-change payloads to.")
	_ = webhookCreateCmd.MarkFlagRequired("url")

	webhookDeleteCmd.Flags().String("webhook", "", "The id of the webhook to be removed.")
	_ = webhookDeleteCmd.MarkFlagRequired("webhook")

	webhookCmd.AddCommand(webhookCreateCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
}

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manipulate state-change webhooks managed by the morag-cloud server.",
}

var webhookCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a webhook for migration state changes.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		u, _ := command.Flags().GetString("url")
		webhook, err := client.CreateWebhook(&model.CreateWebhookRequest{URL: u})
		if err != nil {
			return errors.Wrap(err, "failed to create webhook")
		}

		return printJSON(webhook)
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a webhook.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		webhookID, _ := command.Flags().GetString("webhook")
		err := client.DeleteWebhook(webhookID)
		if err != nil {
			return errors.Wrap(err, "failed to delete webhook")
		}

		return nil
	},
}

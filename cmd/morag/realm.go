package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/morag-io/morag-cloud/model"
)

func init() {
	realmCreateCmd.Flags().String("name", "", "The name of the realm to create.")
	realmCreateCmd.Flags().StringSlice("member", nil, "A user id to add as realm member; repeat for multiple members.")
	_ = realmCreateCmd.MarkFlagRequired("name")

	realmCmd.AddCommand(realmCreateCmd)
	realmCmd.AddCommand(realmListCmd)
}

var realmCmd = &cobra.Command{
	Use:   "realm",
	Short: "Manipulate realms managed by the morag-cloud server.",
}

var realmCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a realm owned by the requester.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		name, _ := command.Flags().GetString("name")
		members, _ := command.Flags().GetStringSlice("member")

		realm, err := client.CreateRealm(&model.CreateRealmRequest{
			Name:      name,
			MemberIDs: members,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create realm")
		}

		return printJSON(realm)
	},
}

var realmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List realms owned by the requester.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		realms, err := client.GetRealms()
		if err != nil {
			return errors.Wrap(err, "failed to list realms")
		}

		return printJSON(realms)
	},
}

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/morag-io/morag-cloud/model"
)

func init() {
	documentCreateCmd.Flags().String("realm", "", "The id of the realm the document belongs to.")
	documentCreateCmd.Flags().String("name", "", "The name of the document.")
	documentCreateCmd.Flags().String("type", "pdf", "The type of the document.")
	_ = documentCreateCmd.MarkFlagRequired("realm")
	_ = documentCreateCmd.MarkFlagRequired("name")

	documentListCmd.Flags().String("realm", "", "The realm id to list documents from.")
	_ = documentListCmd.MarkFlagRequired("realm")

	documentGetCmd.Flags().String("document", "", "The id of the document to be fetched.")
	_ = documentGetCmd.MarkFlagRequired("document")

	documentCmd.AddCommand(documentCreateCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
}

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manipulate documents managed by the morag-cloud server.",
}

var documentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a document in a realm.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		realm, _ := command.Flags().GetString("realm")
		name, _ := command.Flags().GetString("name")
		docType, _ := command.Flags().GetString("type")

		document, err := client.CreateDocument(&model.CreateDocumentRequest{
			RealmID: realm,
			Name:    name,
			Type:    docType,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create document")
		}

		return printJSON(document)
	},
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in a realm.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		realm, _ := command.Flags().GetString("realm")
		documents, err := client.GetDocuments(realm)
		if err != nil {
			return errors.Wrap(err, "failed to list documents")
		}

		return printJSON(documents)
	},
}

var documentGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch a single document.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		documentID, _ := command.Flags().GetString("document")
		document, err := client.GetDocument(documentID)
		if err != nil {
			return errors.Wrap(err, "failed to get document")
		}

		return printJSON(document)
	},
}

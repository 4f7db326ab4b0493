package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/morag-io/morag-cloud/model"
)

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "    ")
	return encoder.Encode(data)
}

func clientFromFlags(command *cobra.Command) *model.Client {
	serverAddress, _ := command.Flags().GetString("server")
	requesterID, _ := command.Flags().GetString("requester")
	return model.NewClient(serverAddress, requesterID)
}

func registerPagingFlags(command *cobra.Command) {
	command.Flags().Int("page", 0, "The page to fetch, starting at 0.")
	command.Flags().Int("per-page", 100, "The number of objects to fetch per page.")
	command.Flags().Bool("include-deleted", false, "Whether to include deleted objects.")
}

func pagingFromFlags(command *cobra.Command) model.Paging {
	page, _ := command.Flags().GetInt("page")
	perPage, _ := command.Flags().GetInt("per-page")
	includeDeleted, _ := command.Flags().GetBool("include-deleted")
	return model.Paging{
		Page:           page,
		PerPage:        perPage,
		IncludeDeleted: includeDeleted,
	}
}

func printMigrationTable(migrations []*model.Migration) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"ID", "STATE", "SOURCE REALM", "TARGET REALM", "PROCESSED", "TOTAL"})

	for _, migration := range migrations {
		table.Append([]string{
			migration.ID,
			string(migration.State),
			migration.SourceRealmID,
			migration.TargetRealmID,
			strconv.Itoa(migration.ProcessedDocuments),
			strconv.Itoa(migration.TotalDocuments),
		})
	}

	table.Render()
}

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/morag-io/morag-cloud/model"
)

func init() {
	migrationRequestCmd.Flags().StringSlice("document", nil, "The id of a document to migrate; repeat for multiple documents.")
	migrationRequestCmd.Flags().String("source-realm", "", "The id of the realm documents currently reside in.")
	migrationRequestCmd.Flags().String("target-realm", "", "The id of the realm to migrate documents into.")
	migrationRequestCmd.Flags().String("mode", string(model.MigrationModeCopy), "The migration mode, either copy or move.")
	migrationRequestCmd.Flags().Bool("copy-stage-files", false, "Whether to copy stage artifact files in copy mode.")
	migrationRequestCmd.Flags().Bool("preserve-original", false, "Whether to keep the source files after a move.")
	migrationRequestCmd.Flags().StringSlice("reprocess-stage", nil, "A pipeline stage to reprocess after migration; repeat for multiple stages.")
	_ = migrationRequestCmd.MarkFlagRequired("document")
	_ = migrationRequestCmd.MarkFlagRequired("source-realm")
	_ = migrationRequestCmd.MarkFlagRequired("target-realm")

	migrationListCmd.Flags().String("realm", "", "The realm id to filter migrations by.")
	migrationListCmd.Flags().String("state", "", "The state to filter migrations by.")
	migrationListCmd.Flags().Bool("table", false, "Whether to display the returned migration list in a table or not.")
	registerPagingFlags(migrationListCmd)

	migrationGetCmd.Flags().String("migration", "", "The id of the migration to be fetched.")
	_ = migrationGetCmd.MarkFlagRequired("migration")

	migrationCancelCmd.Flags().String("migration", "", "The id of the migration to be cancelled.")
	_ = migrationCancelCmd.MarkFlagRequired("migration")

	migrationProgressCmd.Flags().String("migration", "", "The id of the migration to report progress for.")
	_ = migrationProgressCmd.MarkFlagRequired("migration")

	migrationCmd.AddCommand(migrationRequestCmd)
	migrationCmd.AddCommand(migrationListCmd)
	migrationCmd.AddCommand(migrationGetCmd)
	migrationCmd.AddCommand(migrationCancelCmd)
	migrationCmd.AddCommand(migrationProgressCmd)
}

var migrationCmd = &cobra.Command{
	Use:   "migration",
	Short: "Manipulate document migrations managed by the morag-cloud server.",
}

var migrationRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request a migration of documents between realms.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		documentIDs, _ := command.Flags().GetStringSlice("document")
		sourceRealm, _ := command.Flags().GetString("source-realm")
		targetRealm, _ := command.Flags().GetString("target-realm")
		mode, _ := command.Flags().GetString("mode")
		copyStageFiles, _ := command.Flags().GetBool("copy-stage-files")
		preserveOriginal, _ := command.Flags().GetBool("preserve-original")
		stageNames, _ := command.Flags().GetStringSlice("reprocess-stage")

		stages := make([]model.Stage, 0, len(stageNames))
		for _, name := range stageNames {
			stages = append(stages, model.Stage(name))
		}

		request := &model.CreateMigrationRequest{
			DocumentIDs:   documentIDs,
			SourceRealmID: sourceRealm,
			TargetRealmID: targetRealm,
			Options: &model.MigrationOptions{
				Mode:             model.MigrationMode(mode),
				CopyStageFiles:   copyStageFiles,
				PreserveOriginal: preserveOriginal,
				ReprocessStages:  stages,
			},
		}

		dryRun, _ := command.Flags().GetBool("dry-run")
		if dryRun {
			return printJSON(request)
		}

		migration, err := client.CreateMigration(request)
		if err != nil {
			return errors.Wrap(err, "failed to request migration")
		}

		return printJSON(migration)
	},
}

var migrationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List migrations created by the requester.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		realm, _ := command.Flags().GetString("realm")
		state, _ := command.Flags().GetString("state")

		migrations, err := client.GetMigrations(&model.GetMigrationsRequest{
			Paging:  pagingFromFlags(command),
			RealmID: realm,
			State:   state,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list migrations")
		}

		outputToTable, _ := command.Flags().GetBool("table")
		if outputToTable {
			printMigrationTable(migrations)
			return nil
		}

		return printJSON(migrations)
	},
}

var migrationGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch a single migration.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		migrationID, _ := command.Flags().GetString("migration")
		migration, err := client.GetMigration(migrationID)
		if err != nil {
			return errors.Wrap(err, "failed to get migration")
		}

		return printJSON(migration)
	},
}

var migrationCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a migration that has not yet finished.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		migrationID, _ := command.Flags().GetString("migration")
		err := client.CancelMigration(migrationID)
		if err != nil {
			return errors.Wrap(err, "failed to cancel migration")
		}

		return nil
	},
}

var migrationProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Report a migration's aggregated per-document progress.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		client := clientFromFlags(command)

		migrationID, _ := command.Flags().GetString("migration")
		progress, err := client.GetMigrationProgress(migrationID)
		if err != nil {
			return errors.Wrap(err, "failed to get migration progress")
		}

		return printJSON(progress)
	},
}

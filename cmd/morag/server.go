package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/morag-io/morag-cloud/internal/api"
	"github.com/morag-io/morag-cloud/internal/filestore"
	"github.com/morag-io/morag-cloud/internal/store"
	"github.com/morag-io/morag-cloud/internal/supervisor"
	"github.com/morag-io/morag-cloud/model"
)

func init() {
	serverCmd.Flags().String("database", "sqlite://morag-cloud.db", "The database backing the server.")
	serverCmd.Flags().String("listen", ":8075", "The interface and port on which to listen.")
	serverCmd.Flags().String("file-store-path", "./data/documents", "The base path holding per-document stage artifacts.")
	serverCmd.Flags().Duration("poll", 10*time.Second, "The interval at which the supervisor looks for pending work.")
	serverCmd.Flags().Bool("debug", false, "Whether to output debug logs.")

	// Every flag can also be supplied via the environment, e.g.
	// MORAG_DATABASE or MORAG_FILE_STORE_PATH.
	viper.SetEnvPrefix("MORAG")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(serverCmd.Flags())
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the morag-cloud server.",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		logger := log.New()
		if viper.GetBool("debug") {
			logger.SetLevel(log.DebugLevel)
		}

		sqlStore, err := store.New(viper.GetString("database"), logger)
		if err != nil {
			return err
		}
		defer sqlStore.Close()

		err = sqlStore.Migrate()
		if err != nil {
			return err
		}

		released, err := sqlStore.ReleaseStaleMigrationLocks()
		if err != nil {
			return err
		}
		if released > 0 {
			logger.Infof("Released %d stale migration lock(s); those migrations will resume", released)
		}

		instanceID := model.NewID()
		files := filestore.New(viper.GetString("file-store-path"))

		migrationSupervisor := supervisor.NewMigrationSupervisor(sqlStore, files, instanceID, logger)
		scheduler := supervisor.NewScheduler([]supervisor.Doer{migrationSupervisor}, viper.GetDuration("poll"), logger)
		defer scheduler.Close()

		router := mux.NewRouter()
		api.Register(router, &api.Context{
			Store:      sqlStore,
			Supervisor: scheduler,
			Logger:     logger,
		})

		srv := &http.Server{
			Addr:           viper.GetString("listen"),
			Handler:        router,
			ReadTimeout:    180 * time.Second,
			WriteTimeout:   180 * time.Second,
			IdleTimeout:    time.Second * 180,
			MaxHeaderBytes: 1 << 20,
		}

		go func() {
			logger.WithField("addr", srv.Addr).Info("Listening")
			err := srv.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("Failed to listen and serve")
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		sig := <-c
		logger.WithField("shutdown-signal", sig.String()).Info("Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(ctx)
	},
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studynotes/internal/bootstrap"
	mysqlClient "studynotes/internal/platform/mysql"
	"studynotes/internal/vectordb"
)

func collectionsCMD(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "Create the summaries and faqs collections when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zlog, err := env.load()
			if err != nil {
				return err
			}
			defer func() { _ = zlog.Sync() }()

			vectors, err := bootstrap.NewVectorStack(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = vectors.Close() }()

			if err := vectordb.EnsureCollections(cmd.Context(), vectors.Backend); err != nil {
				return err
			}
			zlog.Info("collections ready",
				zap.Strings("collections", []string{vectordb.SummariesCollection, vectordb.FAQsCollection}),
				zap.Int("dimension", vectordb.Dimension))
			return nil
		},
	}
}

func migrateCMD(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, rules and files tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zlog, err := env.load()
			if err != nil {
				return err
			}
			defer func() { _ = zlog.Sync() }()

			db, err := bootstrap.OpenMySQL(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			zlog.Info("schema migrated", zap.String("db", cfg.MySQL.DB))
			return mysqlClient.Close(db)
		},
	}
}

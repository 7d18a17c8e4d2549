package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"studynotes/internal/bootstrap"
	mysqlClient "studynotes/internal/platform/mysql"
	"studynotes/internal/pipeline"
	"studynotes/internal/vectordb"
)

func ingestCMD(env *cliEnv) *cobra.Command {
	var (
		username string
		path     string
		fileID   string
		fileName string
	)
	var ingest = &cobra.Command{
		Use:   "ingest",
		Short: "Run one document through classify, extract and ingest",
		Long: "Runs the pipeline in the foreground and prints its result. Pass --file to upload a local " +
			"document first, or --file-id with --file-name for a document that is already uploaded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			if (path == "") == (fileID == "") {
				return errors.New("exactly one of --file or --file-id is required")
			}

			cfg, zlog, err := env.load()
			if err != nil {
				return err
			}
			defer func() { _ = zlog.Sync() }()
			ctx := cmd.Context()

			docs := bootstrap.NewLlamaCloud(cfg)
			if path != "" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				fileName = filepath.Base(path)
				if fileID, err = docs.Upload(ctx, f, fileName); err != nil {
					return err
				}
			}
			if fileName == "" {
				return errors.New("--file-name is required with --file-id")
			}

			db, err := bootstrap.OpenMySQL(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = mysqlClient.Close(db) }()

			vectors, err := bootstrap.NewVectorStack(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = vectors.Close() }()
			if err := vectordb.EnsureCollections(ctx, vectors.Backend); err != nil {
				return err
			}

			res, err := bootstrap.NewPipeline(db, vectors, docs, zlog).Run(ctx, pipeline.Input{
				FileID:   fileID,
				FileName: fileName,
				Username: username,
			})
			if err != nil {
				return fmt.Errorf("pipeline run failed: %w", err)
			}
			return env.print(res)
		},
	}
	ingest.Flags().StringVarP(&username, "username", "u", "", "owner of the document")
	ingest.Flags().StringVar(&path, "file", "", "local document to upload")
	ingest.Flags().StringVar(&fileID, "file-id", "", "id of an already uploaded document")
	ingest.Flags().StringVar(&fileName, "file-name", "", "name recorded for --file-id")
	return ingest
}

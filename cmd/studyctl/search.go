package main

import (
	"errors"

	"github.com/spf13/cobra"

	"studynotes/internal/bootstrap"
	"studynotes/internal/search"
)

func searchCMD(env *cliEnv) *cobra.Command {
	var req search.Request
	var cmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Query the summaries or faqs collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Username == "" {
				return errors.New("--username is required")
			}
			req.SearchInput = args[0]

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

			results, err := vectors.Dispatcher.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return env.print(results)
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "tenant to search")
	cmd.Flags().StringVarP(&req.SearchType, "type", "t", search.TypeSummary, "summary or faqs")
	cmd.Flags().StringVar(&req.Category, "category", "", "only match this category")
	cmd.Flags().StringVar(&req.FileName, "file-name", "", "only match this file")
	return cmd
}

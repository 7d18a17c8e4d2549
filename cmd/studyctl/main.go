package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studynotes/internal/config"
	"studynotes/internal/pkg/logger"
)

func main() {
	var cfgPath string
	var root = &cobra.Command{
		Use:           "studyctl",
		Short:         "Operate the study notes ingestion and search service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default configs/config.toml or $CONFIG_FILE)")

	env := &cliEnv{cfgPath: &cfgPath, out: os.Stdout}
	root.AddCommand(collectionsCMD(env), migrateCMD(env), ingestCMD(env), searchCMD(env))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cliEnv is shared by every subcommand; config and logger are loaded on
// first use so that --config is already parsed.
type cliEnv struct {
	cfgPath *string
	out     io.Writer
}

func (e *cliEnv) load() (*config.Config, *zap.Logger, error) {
	if *e.cfgPath != "" {
		if err := os.Setenv("CONFIG_FILE", *e.cfgPath); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	zlog := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		IsProd: cfg.IsProduction(),
		Stderr: true,
	})
	return cfg, zlog, nil
}

func (e *cliEnv) print(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

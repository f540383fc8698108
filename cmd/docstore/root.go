package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/docstore/v1/filters"
)

type cli struct {
	v *viper.Viper
}

// NewRootCmd creates the root docstore command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "docstore",
		Short:         "Postgres document store with vector and keyword retrieval",
		Long:          "docstore writes, filters and retrieves documents stored in Postgres with pgvector.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			if err := initConfig(c.v, cfgFile); err != nil {
				return err
			}
			if err := c.v.BindPFlag("logger.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
				return fmt.Errorf("binding log-level flag: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warning, error)")

	root.AddCommand(
		newMigrateCmd(c),
		newWriteCmd(c),
		newDeleteCmd(c),
		newCountCmd(c),
		newFilterCmd(c),
		newSearchCmd(c),
		newVersionCmd(),
	)

	return root
}

func parseFilterFlag(cmd *cobra.Command) (filters.Filter, error) {
	raw, _ := cmd.Flags().GetString("filter")
	if raw == "" {
		return nil, nil
	}
	f, err := filters.ParseJSON([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing --filter: %w", err)
	}
	return f, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

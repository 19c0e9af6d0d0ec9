package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetgo"
)

func cmdList(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [PREFIX]",
		Short: "List assets in the configured source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			app := assetgo.New(cfg.Options()...)
			defer app.Close()

			src, closer, err := openSource(cmd.Context(), cfg, app)
			if err != nil {
				return err
			}
			defer closer.Close()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := src.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

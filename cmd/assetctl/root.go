package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetgo"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	config string
	root   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "assetctl",
		Short:         "Inspect and load assets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&flags.root, "root", "", "Use a local source rooted at this directory")

	cmd.AddCommand(cmdLoad(flags))
	cmd.AddCommand(cmdList(flags))
	cmd.AddCommand(cmdPack())
	cmd.AddCommand(cmdVersion())
	return cmd
}

// loadConfig reads --config (or the defaults) and applies --root.
func (f *rootFlags) loadConfig() (*assetgo.Config, error) {
	cfg := assetgo.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = assetgo.LoadConfig(f.config); err != nil {
			return nil, err
		}
	}
	if f.root != "" {
		cfg.Source = assetgo.SourceConfig{Kind: assetgo.SourceLocal, Root: f.root}
	}
	return cfg, cfg.Validate()
}

func cmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "assetctl", version)
		},
	}
}

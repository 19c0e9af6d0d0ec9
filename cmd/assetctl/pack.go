package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetgo/codec"
)

type packCmd struct {
	compression string
	output      string
}

func cmdPack() *cobra.Command {
	pc := &packCmd{}

	cmd := &cobra.Command{
		Use:   "pack FILE",
		Short: "Write FILE as a compressed asset container",
		Long: `Write FILE as a compressed asset container.
The output is named after the input plus .lz4 or .zst unless -o is given.`,
		Example: `  assetctl pack --compression zstd textures/terrain.png`,
		Args:    cobra.ExactArgs(1),
		RunE:    pc.run,
	}
	cmd.Flags().StringVar(&pc.compression, "compression", "lz4", "Compression: lz4 or zstd")
	cmd.Flags().StringVarP(&pc.output, "output", "o", "", "Output file")
	return cmd
}

func (pc *packCmd) run(cmd *cobra.Command, args []string) error {
	var c codec.Compression
	switch pc.compression {
	case "lz4":
		c = codec.CompressionLZ4
	case "zstd", "zst":
		c = codec.CompressionZstd
	default:
		return fmt.Errorf("unknown compression %q", pc.compression)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	packed, err := codec.Pack(data, c)
	if err != nil {
		return err
	}

	out := pc.output
	if out == "" {
		out = args[0] + c.Extension()
	}
	if err := os.WriteFile(out, packed, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d -> %d bytes\n", out, len(data), len(packed))
	return nil
}

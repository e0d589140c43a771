package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolibri91/charls/codec"
	"github.com/kolibri91/charls/jpegls"
)

// NewDecodeCmd decodes a .jls file to raw samples.
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <input.jls> <output.raw>",
		Short: "decode a JPEG-LS file to raw samples",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			codecKey, _ := cmd.Flags().GetString("codec")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			c, err := codec.Get(codecKey)
			if err != nil {
				return err
			}

			result, err := c.Decode(data)
			if err != nil {
				return err
			}

			slog.InfoContext(ctx, "decoded",
				"input", args[0],
				"width", result.Width,
				"height", result.Height,
				"components", result.Components,
				"bits", result.BitDepth,
				"compressed", len(data),
				"raw", len(result.PixelData))

			return os.WriteFile(args[1], result.PixelData, 0o644)
		},
	}

	cmd.Flags().String("codec", jpegls.UIDLossless, "codec name or transfer syntax UID")
	return cmd
}

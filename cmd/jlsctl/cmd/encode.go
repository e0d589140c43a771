package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolibri91/charls/jpegls"
)

// NewEncodeCmd encodes raw samples to a .jls file.
func NewEncodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <input.raw> <output.jls>",
		Short: "encode raw samples to a JPEG-LS file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			bits, _ := cmd.Flags().GetInt("bits")
			components, _ := cmd.Flags().GetInt("components")
			near, _ := cmd.Flags().GetInt("near")
			ilv, _ := cmd.Flags().GetString("interleave")

			var interleave jpegls.InterleaveMode
			switch ilv {
			case "none":
				interleave = jpegls.InterleaveNone
			case "line":
				interleave = jpegls.InterleaveLine
			case "sample":
				interleave = jpegls.InterleaveSample
			default:
				return fmt.Errorf("unknown interleave mode %q", ilv)
			}

			pixels, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			frame := jpegls.FrameInfo{
				Width:         width,
				Height:        height,
				BitsPerSample: bits,
				Components:    components,
			}
			encoded, err := jpegls.Encode(pixels, frame, &jpegls.EncodeOptions{
				NearLossless: near,
				Interleave:   interleave,
			})
			if err != nil {
				return err
			}

			slog.InfoContext(ctx, "encoded",
				"output", args[1],
				"raw", len(pixels),
				"compressed", len(encoded),
				"near", near,
				"interleave", ilv)

			return os.WriteFile(args[1], encoded, 0o644)
		},
	}

	cmd.Flags().Int("width", 0, "image width in pixels")
	cmd.Flags().Int("height", 0, "image height in pixels")
	cmd.Flags().Int("bits", 8, "bits per sample (2-16)")
	cmd.Flags().Int("components", 1, "component count")
	cmd.Flags().Int("near", 0, "NEAR parameter (0 = lossless)")
	cmd.Flags().String("interleave", "none", "interleave mode (none, line, sample)")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

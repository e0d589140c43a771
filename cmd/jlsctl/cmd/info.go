package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolibri91/charls/jpegls"
)

// NewInfoCmd prints the header parameters of a JPEG-LS file.
func NewInfoCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "info <input.jls>",
		Short: "print the frame and coding parameters of a JPEG-LS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			d := jpegls.NewDecoder(data)
			if err := d.ReadHeader(); err != nil {
				return err
			}

			frame := d.FrameInfo()
			preset := d.Preset()
			fmt.Printf("size:        %dx%d\n", frame.Width, frame.Height)
			fmt.Printf("components:  %d\n", frame.Components)
			fmt.Printf("bits:        %d\n", frame.BitsPerSample)
			fmt.Printf("near:        %d\n", d.NearLossless())
			fmt.Printf("interleave:  %s\n", d.Interleave())
			fmt.Printf("maxval:      %d\n", preset.MaximumSampleValue)
			fmt.Printf("thresholds:  %d/%d/%d\n", preset.Threshold1, preset.Threshold2, preset.Threshold3)
			fmt.Printf("reset:       %d\n", preset.ResetValue)
			return nil
		},
	}
}

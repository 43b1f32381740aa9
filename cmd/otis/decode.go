package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neurlang/otis/config"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <audio> [image.png]",
	Short: "Convert a mono WAV or FLAC file to an image",
	Long: `Convert a mono WAV or FLAC file to an image.

When the layout file written by encode sits next to the audio it is used and
the image is restored exactly, unless the audio was crossfaded. Otherwise
--columns splits the audio into that many equal segments, and --normalize
helps with audio that encode did not produce.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().Int("columns", 0, "number of image columns (required without a layout file)")
	decodeCmd.Flags().String("frames", "", "also write one PNG per column with a scanning bar into this directory")
	decodeCmd.Flags().Bool("normalize", false, "stretch each channel over the range found in the audio, for audio not made by encode")

	bindFlags(decodeCmd.Flags(), map[string]string{
		config.KeyNormalize: "normalize",
	})
}

func runDecode(cmd *cobra.Command, args []string) error {
	c, err := config.Codec(viper.GetViper())
	if err != nil {
		return err
	}

	audioPath := args[0]
	imagePath := withExt(audioPath, ".png")
	if len(args) > 1 {
		imagePath = args[1]
	}
	columns, _ := cmd.Flags().GetInt("columns")

	img, layout, err := c.Decode(cmd.Context(), audioPath, imagePath, columns)
	if err != nil {
		return err
	}
	slog.Info("wrote image",
		"path", imagePath,
		"columns", img.Bounds().Dx(),
		"rows", img.Bounds().Dy(),
	)

	dir, _ := cmd.Flags().GetString("frames")
	return writeFrames(cmd, dir, img, layout)
}

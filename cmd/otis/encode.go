package main

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neurlang/otis/codec"
	"github.com/neurlang/otis/config"
	"github.com/neurlang/otis/scan"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <image> [audio.wav]",
	Short: "Convert an image to a mono WAV file",
	Long: `Convert an image to a mono WAV file.

The audio is written next to the image with the extension .wav unless a path
is given; the layout needed to decode it is written with the extension .yaml.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().String("frames", "", "also write one PNG per column with a scanning bar into this directory")
}

func runEncode(cmd *cobra.Command, args []string) error {
	c, err := config.Codec(viper.GetViper())
	if err != nil {
		return err
	}

	imagePath := args[0]
	audioPath := withExt(imagePath, ".wav")
	if len(args) > 1 {
		audioPath = args[1]
	}

	enc, err := c.Encode(cmd.Context(), imagePath, audioPath)
	if err != nil {
		return err
	}
	slog.Info("wrote audio",
		"path", audioPath,
		"columns", enc.Layout.Columns,
		"rows", enc.Layout.Rows,
		"column_seconds", enc.Layout.ColumnDurationSeconds(),
		"hop_seconds", enc.Layout.HopSeconds(),
	)

	dir, _ := cmd.Flags().GetString("frames")
	return writeFrames(cmd, dir, enc.Image, enc.Layout)
}

func writeFrames(cmd *cobra.Command, dir string, img image.Image, l *codec.Layout) error {
	if dir == "" {
		return nil
	}
	fps, err := scan.FPS(l)
	if err != nil {
		return err
	}
	paths, err := scan.WriteFrames(cmd.Context(), dir, img)
	if err != nil {
		return fmt.Errorf("frames: %w", err)
	}
	slog.Info("wrote frames", "dir", dir, "count", len(paths), "fps", fps)
	return nil
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

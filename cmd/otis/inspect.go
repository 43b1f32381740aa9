package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neurlang/otis/analysis"
	"github.com/neurlang/otis/config"
	"github.com/neurlang/otis/spectral"
	"github.com/neurlang/otis/wavio"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <audio>",
	Short: "Show how the energy of an audio file splits over the color bands",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	flags := inspectCmd.Flags()
	flags.Int("frame-len", 1024, "STFT frame length in samples")
	flags.Int("frame-shift", 256, "STFT frame shift in samples")
	flags.String("dump", "", "write the magnitude spectrogram as little endian float16 to this file")

	bindFlags(flags, map[string]string{
		config.KeyFrameLen:   "frame-len",
		config.KeyFrameShift: "frame-shift",
	})
}

func runInspect(cmd *cobra.Command, args []string) error {
	a, err := config.Analyzer(viper.GetViper())
	if err != nil {
		return err
	}
	audio, err := wavio.Load(args[0])
	if err != nil {
		return err
	}

	energy, err := a.BandEnergy(audio.Samples)
	if err != nil {
		return err
	}
	share := analysis.Share(energy)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d samples, %d Hz, %.3fs, %d frames\n",
		args[0], len(audio.Samples), audio.SampleRate, audio.Duration(), len(energy))
	for b := spectral.Low; b <= spectral.High; b++ {
		fmt.Fprintf(out, "  %-5s %6.2f%%\n", b, 100*share[b])
	}
	fmt.Fprintf(out, "  dominant band: %s\n", share.Dominant())

	dump, _ := cmd.Flags().GetString("dump")
	if dump == "" {
		return nil
	}
	mags, err := a.Magnitudes(audio.Samples)
	if err != nil {
		return err
	}
	f, err := os.Create(dump)
	if err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, analysis.Half(mags)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

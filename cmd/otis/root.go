package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/neurlang/otis/config"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "otis",
	Short: "Observation Transformation with Image Sonification",
	Long: `otis turns images into sound and sound into images.

Each image column is synthesized as one audio segment: red drives the low
band, green the mid band and blue the high band of its spectrum. Segments can
be crossfaded to avoid clicks, at the price of an approximate reverse
transform.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString(config.KeyLogLevel))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./otis.yaml or $HOME/.config/otis/otis.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	flags.Int("sample-rate", 44100, "sample rate of the audio in Hz")
	flags.Int("segment-length", 0, "samples per image column (0 derives it from --column-duration or the image height)")
	flags.Duration("column-duration", 0, "duration of one image column, e.g. 20ms")
	flags.Int("max-dimension", 0, "bound both image sides to this many pixels before encoding (0 disables)")
	flags.Float64("resize-factor", 0, "scale the image by this factor before encoding (0 disables)")
	flags.Bool("auto-fit", false, "shrink images too tall for the segment length instead of failing")
	flags.Float64("crossfade", 0, "fraction of each segment crossfaded with its neighbors, in [0, 1]")
	flags.String("band-weights", "1,1,1", "relative widths of the low, mid and high bands")
	flags.Float64("gain", 1, "magnitude of a full channel")
	flags.Bool("y-reverse", true, "map the bottom row of the image to the lowest frequency")
	flags.Int("workers", 0, "columns processed in parallel (0 uses all CPUs)")

	bindFlags(flags, map[string]string{
		config.KeyLogLevel:       "log-level",
		config.KeySampleRate:     "sample-rate",
		config.KeySegmentLength:  "segment-length",
		config.KeyColumnDuration: "column-duration",
		config.KeyMaxDimension:   "max-dimension",
		config.KeyResizeFactor:   "resize-factor",
		config.KeyAutoFit:        "auto-fit",
		config.KeyCrossfade:      "crossfade",
		config.KeyBandWeights:    "band-weights",
		config.KeyGain:           "gain",
		config.KeyYReverse:       "y-reverse",
		config.KeyWorkers:        "workers",
	})

	rootCmd.AddCommand(encodeCmd, decodeCmd, inspectCmd)
}

// bindFlags binds each viper key to the flag of the given name
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := fs.Lookup(name); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/otis")
		}
		viper.SetConfigName("otis")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "error reading config %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

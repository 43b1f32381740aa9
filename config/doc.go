// Package config builds codec settings from viper.
//
// Values come, in order of precedence, from command line flags, OTIS_*
// environment variables, an optional otis.yaml file and the defaults set by
// SetDefaults. Keys use snake case, e.g. sample_rate or band_weights.
package config

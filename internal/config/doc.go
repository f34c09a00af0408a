// Package config defines the harvester configuration and its defaults.
//
// Configuration flows in one direction: cobra flags and the optional
// YAML config file populate a Config, Validate() checks it once, and the
// value is handed to the pipeline. Nothing in this package or its users
// reads configuration from global state.
package config

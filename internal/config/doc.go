// Package config loads tickerboard configuration from YAML.
//
// ${VAR} references are expanded from the environment before parsing, and
// a .env file can seed the environment first. Zero-valued fields receive
// defaults; Validate reports the first invalid field by its dotted path.
package config

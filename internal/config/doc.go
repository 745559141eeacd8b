// Package config provides configuration structures and utilities for
// antennascan. It defines the defaults for talking to the regulator's site,
// the output locations and the optional YAML configuration file.
package config

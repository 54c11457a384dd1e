// Package config loads the pressbook YAML configuration file. Values fall
// back to sensible defaults, ${VAR} references expand from the environment,
// and Validate rejects configurations the rest of the program cannot use.
package config

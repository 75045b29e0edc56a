// Package config loads fstree's settings. Values are layered from the
// embedded defaults, the user's TOML file, FSTREE_* environment variables
// and command-line overrides, then decoded into Config.
package config

// Package config defines the format-agnostic configuration model: a list of
// named networks, each with its builder options and output destinations.
//
// The `config.Model` is the single source of truth for the `app` package.
// Concrete loaders for HCL and YAML live in separate packages and are
// combined with ByExtension.
package config

// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, .env and YAML files). It provides
// type-safe access to settings such as database, JWT and messaging provider
// credentials, so no component has to read the environment on its own.
package config

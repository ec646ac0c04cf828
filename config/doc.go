// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides
// type-safe access to queue settings while keeping configuration details
// separate from the queue itself.
package config

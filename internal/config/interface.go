package config

import "context"

// Loader is the interface for a format-specific program loader.
type Loader interface {
	// Load reads the program found at the given paths and translates it into
	// the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Program, error)
}

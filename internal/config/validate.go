package config

import (
	"fmt"
	"path/filepath"
)

var validKinds = map[string]bool{
	"movie":     true,
	"tv":        true,
	"music":     true,
	"audiobook": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for errors a running server would hit.
func (c *Config) Validate() error {
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("server.log_level: unknown level %q", c.Server.LogLevel)
	}
	if c.Scanner.ImportConcurrency < 1 {
		return fmt.Errorf("scanner.import_concurrency: must be at least 1, got %d", c.Scanner.ImportConcurrency)
	}

	seen := make(map[string]bool, len(c.Libraries))
	for i, lib := range c.Libraries {
		if lib.Root == "" {
			return fmt.Errorf("library[%d]: root is required", i)
		}
		if !filepath.IsAbs(lib.Root) {
			return fmt.Errorf("library[%d]: root %q must be absolute", i, lib.Root)
		}
		if !validKinds[lib.Kind] {
			return fmt.Errorf("library[%d]: unknown kind %q", i, lib.Kind)
		}
		if seen[lib.Root] {
			return fmt.Errorf("library[%d]: duplicate root %q", i, lib.Root)
		}
		seen[lib.Root] = true
	}
	return nil
}

// Package config loads service configuration from the environment. Every
// board variable is namespaced under TABLETOP_SPACE_ followed by the service
// name, e.g. TABLETOP_SPACE_BOARD_PORT and TABLETOP_SPACE_BOARD_DB_PATH, so
// several services can share a host without colliding.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables into target, a
// pointer to a struct carrying `env` tags with fully-qualified
// TABLETOP_SPACE_ variable names.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

package instance

import "github.com/angelmondragon/storefront/pkg/env"

// GetID returns the dyno or host identifier the process runs as, or "local".
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("HOSTNAME", "local")
}

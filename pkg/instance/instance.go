package instance

import "os"

// GetID returns the process instance identifier. Heroku style DYNO names are
// accepted when no explicit id is set.
func GetID() string {
	for _, key := range []string{"STOREFRONT_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}

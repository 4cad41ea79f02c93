package instance

import "os"

// EnvInstanceID overrides the identity reported by GetID.
const EnvInstanceID = "HANDWERK_INSTANCE_ID"

// GetID identifies this process in lock owner tokens and logs. It prefers
// HANDWERK_INSTANCE_ID, then the hostname.
func GetID() string {
	if id := os.Getenv(EnvInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-0"
}

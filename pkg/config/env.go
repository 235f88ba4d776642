package config

import (
	"strconv"
	"strings"
)

const envPrefix = "OVEN_CTRL_"

// Map-valued settings take the map key from the rest of the variable name,
// lowercased: OVEN_CTRL_STREAMERS_ALICE=k1 sets streamers.alice.
const (
	envStreamers      = "STREAMERS_"
	envAllowedStreams = "ALLOWED_STREAMS_"
	envRooms          = "ROOMS_"
)

// applyEnvOverrides overlays OVEN_CTRL_* variables from environ, given in
// os.Environ form.
func (c *Config) applyEnvOverrides(environ []string) {
	c.ensureMaps()

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		name = strings.TrimPrefix(name, envPrefix)

		switch name {
		case "SERVER_ADDRESS":
			c.Server.Address = value
			continue
		case "LOG_LEVEL":
			c.Logging.Level = value
			continue
		case "LOG_FORMAT":
			c.Logging.Format = value
			continue
		case "EXTERNAL_HOST":
			c.ExternalHost = value
			continue
		case "EXTERNAL_TLS":
			if b, err := strconv.ParseBool(value); err == nil {
				c.ExternalTLS = b
			}
			continue
		case "TRACING_ENABLED":
			if b, err := strconv.ParseBool(value); err == nil {
				c.Tracing.Enabled = b
			}
			continue
		case "JAEGER_URL":
			c.Tracing.JaegerURL = value
			continue
		}

		if key, ok := mapKey(name, envStreamers); ok {
			c.Streamers[key] = value
		} else if key, ok := mapKey(name, envAllowedStreams); ok {
			c.AllowedStreams[key] = splitList(value)
		} else if key, ok := mapKey(name, envRooms); ok {
			c.Rooms[key] = value
		}
	}
}

func mapKey(name, prefix string) (string, bool) {
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	key := strings.ToLower(strings.TrimPrefix(name, prefix))
	return key, key != ""
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

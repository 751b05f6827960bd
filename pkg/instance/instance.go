package instance

import "github.com/gmlima14/irf/pkg/env"

// GetID returns the process instance identifier used in logs.
func GetID() string {
	return env.First("local", "IRF_INSTANCE_ID", "DYNO", "HOSTNAME")
}

package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Host-link client configuration struct
// --------------------------------------------------------------------------

// LinkConfig holds all configuration parameters for a host-link client.
type LinkConfig struct {
	// Endpoints the client may send to. Transports that support load
	// balancing rotate over all of them.
	Endpoints []string

	// TimeoutSecond bounds a single request/response exchange.
	TimeoutSecond int

	// RetryCount is how many times a failed send is retried.
	RetryCount int

	// ConnectionsPerEndpoint - for transports that support this feature.
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the link configuration
func (c *LinkConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Host Link")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Host simulator configuration struct
// --------------------------------------------------------------------------

// SimulatorConfig holds all configuration parameters for the host simulator.
type SimulatorConfig struct {
	// Endpoint the simulator listens on (address or socket path).
	Endpoint string

	// MetricsEndpoint is the optional address for the Prometheus-format
	// telemetry exposition. Empty disables it.
	MetricsEndpoint string

	// TimeoutSecond bounds a single request/response exchange.
	TimeoutSecond int

	// SeedFile is an optional path to a JSON document snapshot loaded at
	// startup. Empty seeds the built-in demo document.
	SeedFile string

	// LogLevel is the level at which logs will be output (debug, info,
	// warn, error).
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *SimulatorConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Host Simulator")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	}
	if c.SeedFile != "" {
		addField("Seed File", c.SeedFile)
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

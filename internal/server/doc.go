// Package server provides the HTTP API surface: session control
// (connect/disconnect), session state and event-log monitoring, the
// appointment registry view, health checks and Prometheus metrics.
package server

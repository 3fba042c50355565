// Package registry provides the in-memory appointment registry consumed by
// the tool dispatch bridge and the HTTP API. Records live only for the
// lifetime of the process.
package registry

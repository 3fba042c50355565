// Package session owns the call-session lifecycle. The controller drives
// the connection state machine (disconnected, connecting, connected, error),
// acquires and releases audio devices, routes captured frames to either the
// remote streaming peer or the local dialogue engine, and tears the session
// down on end_call after the configured grace delay.
package session

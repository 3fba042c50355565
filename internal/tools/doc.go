// Package tools implements the tool dispatch bridge, the only path by which
// conversational state changes appointment data. Both the remote protocol
// peer and the local dialogue engine converge on Dispatcher.Dispatch;
// execution failures are converted to structured results at this boundary
// and never abort the session.
package tools

// Package speech defines the local text-to-speech and speech-to-text
// capability interfaces and the gate that keeps them mutually exclusive,
// so the session never hears its own synthesized output.
package speech

// Package remote implements the websocket client for the hosted voice
// assistant. One connection serves one call session: the setup message
// declares the system instruction, voice and tool surface, captured audio
// streams up as base64 PCM frames, and the peer streams back synthesized
// audio, tool-call requests and interruption signals.
package remote

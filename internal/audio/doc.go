// Package audio handles PCM format conversion, playback scheduling, and
// input level metering. It implements the float32/int16 wire codec with
// base64 transport encoding, a gapless playback scheduler with interruption
// flushing, and the RMS volume meter behind the session's volume output.
package audio

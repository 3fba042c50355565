// Package dialogue implements the local fallback dialogue engine: a
// turn-based finite-state machine that drives a complete appointment-booking
// or reminder-confirmation conversation using only local recognition and
// synthesis, without a remote dialogue service.
package dialogue

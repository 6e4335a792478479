// Package display implements the Rolling Display Buffer: a fixed-capacity
// window of the most recent ticker records and the terminal table that is
// repainted after every update.
package display

// Package gsa implements Generalized Simulated Annealing (Tsallis and Stariolo)
// for box-constrained minimization.
//
// A run alternates an outer cooling loop with an inner proposal loop. The
// visiting temperature shrinks the heavy-tailed Tsallis steps over time and the
// acceptance temperature controls how often uphill moves are taken. The best
// candidate ever observed, including the starting point, is returned.
//
// Runs are sequential. Independent runs can be spread over goroutines with
// MultiStart.
package gsa

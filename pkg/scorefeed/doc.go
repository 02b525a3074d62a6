// Package scorefeed is a client for a remote opponent score feed. During
// a battle it polls the feed provider and delivers opponent score events
// to a handler, replacing the built-in simulated opponent.
package scorefeed

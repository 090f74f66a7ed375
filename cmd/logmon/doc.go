// Package main hosts the logmon CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC
// calls against the daemon: lifecycle control, snapshot and live-follow
// output, archive queries, and configuration scaffolding. It centralizes
// configuration resolution and socket discovery so subcommands can focus on
// user experience instead of wiring.
package main

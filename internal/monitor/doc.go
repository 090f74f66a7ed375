// Package monitor observes rotating application log files that an external
// writer keeps open and appends to continuously.
//
// A Monitor is built from an ordered list of target base paths. At
// construction it scans each target's rotation files (base+".1.txt" then
// base+".txt") into a bounded, chronologically ordered snapshot and records
// a per-file read cursor. Started, it polls the current files once per
// second, comparing size against the cursor, and delivers each newly
// completed line to the consumer callback exactly once. Change notification
// APIs are deliberately not used: they fire on close, and the writers never
// close their files.
//
// The Hub is a consumer-side fan-out for delivered lines: a bounded ring
// with sequence numbers, long-poll fetch, and pluggable sinks.
package monitor

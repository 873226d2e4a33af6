// Package logs reads the application log file for `scentlog logs`.
//
// Last returns the trailing lines with bounded memory and the offset to resume
// from; Follow polls from that offset until the context ends.
package logs

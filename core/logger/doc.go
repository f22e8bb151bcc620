// Package logger prints diagnostics for humans and records execution events
// for machines.
package logger

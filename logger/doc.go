// Package logger provides structured logging setup for queue consumers.
package logger

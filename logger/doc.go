// Package logger provides structured logging for filesig using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Logs go to stderr by
// default so that signature lines on stdout stay machine readable.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("scheduler")
//	log.Error("worker failed", logger.Fields("worker", name))
package logger

// Package logger wraps zerolog with the small structured-logging surface
// used across capdi: leveled methods taking field maps, component tagging
// and a named-logger registry.
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "di")
//	log.Info("registered", logger.Fields("type", "*app.Store"))
package logger

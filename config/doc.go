// Package config loads capdi runtime settings from an optional YAML file,
// an optional .env file and the process environment.
//
// Environment variables override file values; nested keys use underscores,
// so DI_AUTOWIRE sets di.autowire and LOG_LEVEL sets log.level.
package config

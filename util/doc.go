// Package util provides small helpers shared across the service: size
// parsing for configuration values and file name checks for uploads.
package util

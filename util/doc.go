// Package util provides small helpers shared by the configuration and
// display code.
package util

// Package component defines lifecycle-managed parts of a kaproxy process:
// the client wrapper and the fake proxy server both implement Component and
// are started and stopped through a Registry.
package component

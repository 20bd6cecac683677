// Package server hosts a gin engine behind an h2c-capable http.Server with
// the standard middleware stack and health/version endpoints. The fake proxy
// in kaproxytest and the fake-proxy CLI command serve through it.
package server

// Package resilience provides retry with exponential backoff for callers
// that poll the proxy in a loop. The kaproxy client itself never retries;
// retrying is a decision of the code that drives it.
package resilience

// Package httputil provides HTTP helpers for fetching remote recordings.
//
// Recordings are often served from crawl infrastructure that is slow or
// flaky, so the fetcher retries transient failures with exponential
// backoff and bounds response sizes.
package httputil

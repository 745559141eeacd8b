// Package fetch is the HTTP client adapter used to talk to the registry.
//
// Client wraps a resty client and adds the politeness rule the crawl depends
// on: a fixed minimum pause between the end of one request and the start of
// the next, whatever the outcome of the previous request. Requests are
// serialized, so at most one is in flight.
//
// Failures surface as two kinds:
//   - *NetworkError: connection refused, DNS failure, timeout, truncated body
//   - *HTTPStatusError: the server answered with a non-2xx status
//
// There are no retries; the caller decides whether a failure ends the run.
//
// Response bodies are transcoded to UTF-8 from the charset the server
// declares (or the one sniffed from the markup), so Greek text served as
// windows-1253 or ISO-8859-7 reaches the extractor intact.
package fetch

// Package stats counts receiver traffic and serves it at /metrics in the
// Prometheus exposition format.
//
// Counters are plain atomics; the metric families are built on every scrape
// from client_model types and written with expfmt, honouring the format the
// scraper asks for in its Accept header.
package stats

// Package scraper reads the receiver's /metrics endpoint and summarises it
// for `agent status`.
//
// The endpoint serves the Prometheus text exposition format. Scrape parses it
// with expfmt into metric families and folds the families the receiver
// publishes into a Status. Per-rpc series (send, transfer) are kept apart so
// the status output can show which path the traffic used. Families missing
// from the scrape read as zero, which is also what a freshly started receiver
// reports.
package scraper

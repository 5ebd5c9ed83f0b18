// Package nse downloads market data from the National Stock Exchange's
// semi-public HTTP endpoints: daily bhavcopy archives, option chains,
// index constituent snapshots, and corporate action listings.
//
// A Client owns one browser-like session (cookie jar plus a fixed
// header set). Endpoints that sit behind the exchange's bot checks are
// warmed up by visiting a regular site page first so the session
// carries the cookies the API expects. Each download is a single
// blocking call with no retries; successful calls persist the raw
// payload and a derived table (xlsx by default, csv via WithFormat)
// into the client's output directory, failed calls write nothing.
//
// Failures are classified into *FetchError values so callers can tell
// transport problems, upstream status rejections, malformed payloads,
// and empty result sets apart without string matching.
package nse

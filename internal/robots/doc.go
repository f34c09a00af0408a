// Package robots implements the politeness gate consulted before every
// page fetch.
//
// The gate downloads each origin's /robots.txt at most once per run and
// caches the parsed policy for the rest of the run, success or failure.
// A failed policy fetch is treated as "unrestricted" so an unreachable
// robots.txt never blocks a crawl, matching the standard can_fetch
// semantics for user agent "*" and named agents alike.
package robots

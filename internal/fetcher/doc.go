// Package fetcher implements the single-URL fetch primitive every HTTP
// interaction in the harvester funnels through.
//
// A Fetcher owns the run's global visited set: a URL is fetched at most
// once per run, no matter which crawl unit asks for it. Each fetch
// consults the politeness gate, retries transient failures with
// exponential backoff, and sleeps a small randomized jitter after
// success so the target origins are never hammered.
//
// All failure modes are non-fatal by contract. FetchPage reports
// "no content" and the caller's crawl unit stops early; sibling units
// are unaffected.
package fetcher

// Package pipeline orchestrates the harvest as a sequence of steps.
//
// A Run accumulates state: the crawl steps collect links and pages, the
// parse steps turn them into records, the aggregate step merges them
// into the dataset, and the persist step stores the result. Steps
// implement the Step interface and are executed in order by Pipeline.
//
// Design decision: We use a step pipeline rather than one monolithic
// function because steps can be tested in isolation, reordered, or
// omitted (e.g. no persist step without a database), and the execution
// log reads as a sequence of named stages.
package pipeline

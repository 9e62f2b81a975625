// Package generate fans library work items out to a pool of workers, turns
// every enumerated combination into a molecule.Record, and hands the records
// to a single emit callback in completion order.
//
// Workers receive plain WorkItems and read the shared Source without
// mutating it. Only the collector (the goroutine calling Run) touches the
// sink, so emit needs no locking. The first worker error cancels the pool;
// records already emitted stay emitted.
package generate

// Package writers turns generation and decode results into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (CSV/TSV, JSON/JSONL, SQLite, FASTQ).
//   - generate and decode stay domain-only; they never see an io.Writer.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
//   - Formats are looked up in registries filled from init() blocks.
package writers

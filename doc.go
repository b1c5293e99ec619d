// Package ratefeed provides the building blocks for incremental acquisition
// of tabular market data from remote sources. It is designed to be run
// unattended, appending only genuinely new observations to local stores and
// leaving recorded history untouched on every failure path.
//
// The core functionalities include:
//   - Tabular Store: a durable append-only row store, one CSV file per data
//     series family, whose last row carries the freshness watermark.
//   - Resilient Extraction: an ordered chain of strategies that locate series
//     values inside structured (JSON) or semi-structured (HTML table)
//     payloads, falling back from the most specific to a full-text search.
//   - Sync Controller: the freshness gate, fetch, extraction and atomic
//     append of one acquisition cycle, with idempotent re-runs.
//   - Cadence Scheduling: drift-free daily or fixed-interval timer loops, one
//     independent loop per source.
//
// Remote sources live in their own subpackages (chinamoney, sge) and
// implement the Source interface. This package serves as the foundational
// logic for the `rfd` command-line tool.
package ratefeed

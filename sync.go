package ratefeed

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// The error taxonomy of a sync cycle. All errors returned by Sync wrap one
// of these sentinels, so callers can classify with errors.Is.
var (
	// ErrFetch covers network, timeout and non-success status failures.
	ErrFetch = errors.New("fetch_error")
	// ErrNoData means no extraction strategy yielded a usable record.
	ErrNoData = errors.New("no_data_extracted")
	// ErrPersist means the store append failed. The watermark is unchanged.
	ErrPersist = errors.New("persist_error")
	// ErrConfig means a required input is missing. Fatal at startup only.
	ErrConfig = errors.New("config_error")
)

// Source is one remote feed the sync controller can acquire from.
type Source interface {
	// Name identifies the source in diagnostics.
	Name() string
	// Series lists the labels to extract from each payload.
	Series() []string
	// LatestKey returns the source's advertised freshness key, via a
	// lightweight metadata call when the source has one. An error here is
	// not fatal for the cycle: the controller falls back to a full fetch.
	LatestKey(ctx context.Context) (string, error)
	// Fetch returns the full payload.
	Fetch(ctx context.Context) (*Response, error)
	// Extractor returns the strategy chain for this source's payloads.
	Extractor() *Extractor
}

// Tabular is the store surface one sync cycle needs.
type Tabular interface {
	LastKey() (string, error)
	Append([]Record) error
}

// Status classifies the outcome of one sync cycle.
type Status int

const (
	// Updated means new rows were appended.
	Updated Status = iota
	// NoOpAlreadyCurrent means the store watermark already matches the
	// source's freshness key; nothing was fetched or written.
	NoOpAlreadyCurrent
	// SyncFailed means the cycle failed; the store is untouched and the next
	// cadence tick retries.
	SyncFailed
)

func (s Status) String() string {
	switch s {
	case Updated:
		return "updated"
	case NoOpAlreadyCurrent:
		return "already-current"
	case SyncFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is the result of one sync cycle.
type Outcome struct {
	Status Status
	Rows   int   // rows appended when Status is Updated
	Err    error // cause when Status is SyncFailed, wrapping a sentinel
}

func (o Outcome) String() string {
	switch o.Status {
	case Updated:
		return fmt.Sprintf("updated (%d rows)", o.Rows)
	case SyncFailed:
		return fmt.Sprintf("failed: %v", o.Err)
	}
	return o.Status.String()
}

// Sync runs one acquisition cycle: read the store watermark, compare it to
// the source's advertised freshness key, and when they differ fetch the full
// payload, extract the requested series and append the new rows as a single
// atomic batch.
//
// Failures are cycle-local. Sync never retries within the call and never
// mutates the store on a failure path; retry is the scheduler's business on
// the next cadence tick.
func Sync(ctx context.Context, store Tabular, src Source) Outcome {
	watermark, err := store.LastKey()
	if err != nil {
		return failed(src, fmt.Errorf("%w: reading watermark: %v", ErrPersist, err))
	}

	key, err := src.LatestKey(ctx)
	if err == nil && watermark != "" && watermark == key {
		return Outcome{Status: NoOpAlreadyCurrent}
	}
	if err != nil {
		// missing metadata falls through to the full fetch
		log.Printf("sync %s: freshness key unavailable, fetching full payload: %v", src.Name(), err)
	}

	resp, err := src.Fetch(ctx)
	if err != nil {
		return failed(src, fmt.Errorf("%w: %v", ErrFetch, err))
	}

	res := src.Extractor().Extract(resp, src.Series())
	if res.Empty() {
		return failed(src, fmt.Errorf("%w: no series among %v found in %s payload (key %q)",
			ErrNoData, src.Series(), src.Name(), resp.Key))
	}

	records := Records(res)
	if err := store.Append(records); err != nil {
		if !errors.Is(err, ErrPersist) {
			err = fmt.Errorf("%w: %v", ErrPersist, err)
		}
		return failed(src, err)
	}
	return Outcome{Status: Updated, Rows: len(records)}
}

func failed(src Source, err error) Outcome {
	log.Printf("sync %s: %v", src.Name(), err)
	return Outcome{Status: SyncFailed, Err: err}
}

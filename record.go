package ratefeed

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single observation appended to a Store. Records are immutable
// once appended.
type Record struct {
	ID     string          // unique row id within a store
	Series string          // series label as published by the source
	Value  decimal.Decimal // observed value
	Key    string          // the source freshness key this observation belongs to
}

// recordSeq disambiguates ids generated within the same microsecond.
var recordSeq atomic.Uint64

// NewRecord builds a Record with a generated id of the form
// "<key>-<series>-<HHMMSSmmmmmm>.<seq>". The timestamp plus sequence suffix
// keeps ids unique even when the same series appears twice under the same
// freshness key in one batch.
func NewRecord(series string, value decimal.Decimal, key string) Record {
	now := time.Now()
	stamp := fmt.Sprintf("%s%06d", now.Format("150405"), now.Nanosecond()/1000)
	return Record{
		ID:     fmt.Sprintf("%s-%s-%s.%d", key, series, stamp, recordSeq.Add(1)),
		Series: series,
		Value:  value,
		Key:    key,
	}
}

// Records converts an extraction result into a batch of store rows, one per
// extracted quote, all tagged with the result's freshness key.
func Records(res ExtractionResult) []Record {
	records := make([]Record, 0, len(res.Quotes))
	for _, q := range res.Quotes {
		records = append(records, NewRecord(q.Series, q.Value, res.Key))
	}
	return records
}

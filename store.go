package ratefeed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/shopspring/decimal"
)

// storeHeader is the fixed column layout of every store file.
var storeHeader = []string{"Id", "Series", "Value", "Date"}

// Store is a durable append-only row store persisted as a single CSV file.
// Rows are only ever added, never rewritten or deleted; the last row's Date
// column is the store's freshness watermark. A Store assumes a single
// writer: concurrent appends to the same file are undefined behavior and
// must be avoided by deployment discipline.
type Store struct {
	path string
}

// NewStore returns a Store backed by the given file. The file is created
// with its header on first append.
func NewStore(path string) *Store { return &Store{path: path} }

// Path returns the store file location, e.g. to hand it off as an
// attachment.
func (s *Store) Path() string { return s.path }

// Append writes the batch after the current last row. The whole batch is
// serialized first and written with a single call, so either all rows become
// durable or none: on a write error the file is truncated back to its
// pre-append size and the watermark is unchanged.
func (s *Store) Append(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		w.Write(storeHeader)
	}
	for _, r := range records {
		w.Write([]string{r.ID, r.Series, r.Value.String(), r.Key})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: encoding batch for %s: %v", ErrPersist, s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrPersist, s.path, err)
	}
	defer f.Close()

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("%w: seeking end of %s: %v", ErrPersist, s.path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		// discard whatever part of the batch made it to disk
		if terr := f.Truncate(offset); terr != nil {
			log.Printf("store %s: cannot truncate partial batch: %v", s.path, terr)
		}
		return fmt.Errorf("%w: appending %d rows to %s: %v", ErrPersist, len(records), s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: flushing %s: %v", ErrPersist, s.path, err)
	}
	return nil
}

// LastKey returns the freshness key of the store's last row, or "" for an
// empty or not-yet-created store.
func (s *Store) LastKey() (string, error) {
	rows, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(rows) <= 1 { // header only
		return "", nil
	}
	return rows[len(rows)-1][3], nil
}

// LookupLatest scans the store from the last row backward and resolves each
// requested series to the first value whose row label contains it (substring
// match, same semantics as extraction). Scanning stops early once every
// requested series is resolved. This is a point-in-time read: it never
// blocks on or triggers a sync.
func (s *Store) LookupLatest(series ...string) (map[string]decimal.Decimal, error) {
	found := make(map[string]decimal.Decimal, len(series))
	rows, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return found, nil
	}
	if err != nil {
		return nil, err
	}
	for i := len(rows) - 1; i >= 1 && len(found) < len(series); i-- {
		label := rows[i][1]
		for _, name := range series {
			if _, ok := found[name]; ok {
				continue
			}
			if !matchSeries(label, name) {
				continue
			}
			value, err := decimal.NewFromString(rows[i][2])
			if err != nil {
				log.Printf("store %s: row %q has unreadable value %q: %v", s.path, rows[i][0], rows[i][2], err)
				continue
			}
			found[name] = value
		}
	}
	return found, nil
}

// read loads all rows, header included.
func (s *Store) read() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = len(storeHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading store %s: %w", s.path, err)
	}
	return rows, nil
}

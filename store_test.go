package ratefeed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func rec(series, value, key string) Record {
	return NewRecord(series, decimal.RequireFromString(value), key)
}

func TestStore_AppendCreatesHeaderOnce(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "rates.csv"))

	if err := store.Append([]Record{rec("US Dollar", "7.1053", "2024-01-05")}); err != nil {
		t.Fatalf("Append() unexpected error = %v", err)
	}
	if err := store.Append([]Record{rec("US Dollar", "7.1100", "2024-01-06")}); err != nil {
		t.Fatalf("Append() unexpected error = %v", err)
	}

	content, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("store has %d lines, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "Id,Series,Value,Date" {
		t.Errorf("header = %q, want %q", lines[0], "Id,Series,Value,Date")
	}
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "Id,") {
			t.Errorf("header repeated in data rows: %q", line)
		}
	}
}

func TestStore_LastKey(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "rates.csv"))

	key, err := store.LastKey()
	if err != nil {
		t.Fatalf("LastKey() on a new store: unexpected error = %v", err)
	}
	if key != "" {
		t.Errorf("LastKey() on a new store = %q, want empty", key)
	}

	batch := []Record{
		rec("US Dollar", "7.1053", "2024-01-05"),
		rec("Euro", "7.7405", "2024-01-05"),
	}
	if err := store.Append(batch); err != nil {
		t.Fatalf("Append() unexpected error = %v", err)
	}
	key, err = store.LastKey()
	if err != nil {
		t.Fatalf("LastKey() unexpected error = %v", err)
	}
	if key != "2024-01-05" {
		t.Errorf("LastKey() = %q, want %q", key, "2024-01-05")
	}
}

func TestStore_LookupLatest(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "rates.csv"))
	history := []Record{
		rec("US Dollar", "7.1053", "2024-01-04"),
		rec("Euro", "7.7405", "2024-01-04"),
		rec("US Dollar", "7.1200", "2024-01-05"),
	}
	if err := store.Append(history); err != nil {
		t.Fatalf("Append() unexpected error = %v", err)
	}

	values, err := store.LookupLatest("USD", "EUR", "GBP")
	if err != nil {
		t.Fatalf("LookupLatest() unexpected error = %v", err)
	}
	// the most recent USD row wins, even though an older one matches too
	if got := values["USD"]; !got.Equal(decimal.RequireFromString("7.12")) {
		t.Errorf("LookupLatest() USD = %s, want 7.12", got)
	}
	if got := values["EUR"]; !got.Equal(decimal.RequireFromString("7.7405")) {
		t.Errorf("LookupLatest() EUR = %s, want 7.7405", got)
	}
	if _, ok := values["GBP"]; ok {
		t.Error("LookupLatest() resolved GBP, want it absent")
	}
}

func TestStore_LookupLatest_NewStore(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "rates.csv"))
	values, err := store.LookupLatest("USD")
	if err != nil {
		t.Fatalf("LookupLatest() unexpected error = %v", err)
	}
	if len(values) != 0 {
		t.Errorf("LookupLatest() on a new store = %v, want empty", values)
	}
}

func TestStore_AppendFailureLeavesNothingBehind(t *testing.T) {
	// parent directory does not exist: the append must fail as a persist
	// error and create no file at all
	store := NewStore(filepath.Join(t.TempDir(), "missing", "rates.csv"))
	err := store.Append([]Record{rec("US Dollar", "7.1053", "2024-01-05")})
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("Append() error = %v, want a persist_error", err)
	}
	if _, serr := os.Stat(store.Path()); !os.IsNotExist(serr) {
		t.Error("Append() left a file behind on failure")
	}
	key, err := store.LastKey()
	if err != nil || key != "" {
		t.Errorf("LastKey() after failed append = %q, %v, want empty and no error", key, err)
	}
}

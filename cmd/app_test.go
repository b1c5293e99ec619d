package cmd

import (
	"errors"
	"reflect"
	"testing"

	"github.com/etnz/ratefeed"
)

func TestParseAt(t *testing.T) {
	testCases := []struct {
		in        string
		hh, mm    int
		expectErr bool
	}{
		{"09:30", 9, 30, false},
		{"16:00", 16, 0, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"09:60", 0, 0, true},
		{"0930", 0, 0, true},
		{"", 0, 0, true},
		{"a:b", 0, 0, true},
	}
	for _, tc := range testCases {
		hh, mm, err := parseAt(tc.in)
		if (err != nil) != tc.expectErr {
			t.Errorf("parseAt(%q) error = %v, want error: %v", tc.in, err, tc.expectErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ratefeed.ErrConfig) {
				t.Errorf("parseAt(%q) error = %v, want a config_error", tc.in, err)
			}
			continue
		}
		if hh != tc.hh || mm != tc.mm {
			t.Errorf("parseAt(%q) = %d:%d, want %d:%d", tc.in, hh, mm, tc.hh, tc.mm)
		}
	}
}

func TestSplitList(t *testing.T) {
	testCases := []struct {
		in   string
		want []string
	}{
		{"USD,EUR", []string{"USD", "EUR"}},
		{" USD , EUR ", []string{"USD", "EUR"}},
		{"USD", []string{"USD"}},
		{"", nil},
		{",,", nil},
	}
	for _, tc := range testCases {
		if got := splitList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestOpenSource_UnknownName(t *testing.T) {
	_, _, err := openSource("bloomberg")
	if !errors.Is(err, ratefeed.ErrConfig) {
		t.Errorf("openSource(bloomberg) error = %v, want a config_error", err)
	}
}

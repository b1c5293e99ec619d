package ratefeed

import (
	"encoding/json"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
)

// JSONRecords returns a Strategy for the structured source shape: the
// payload holds a list of records at recordsPath, each carrying a series
// label under labelField and a value under valueField.
//
// Series are matched by exact or substring match against the record's label,
// because source labels tend to be verbose ("USD" matches "US Dollar").
// When several records match the same series, the first one in the source's
// row order wins; that is the strategy's tie-break, not an accident.
func JSONRecords(recordsPath, labelField, valueField string) Strategy {
	return func(resp *Response, series string) (string, bool) {
		var jobj any
		if err := json.Unmarshal(resp.Body, &jobj); err != nil {
			return "", false
		}
		jval, err := jsonpath.Get(recordsPath, jobj)
		if err != nil {
			return "", false
		}
		jlist, ok := jval.([]any)
		if !ok {
			return "", false
		}
		for _, item := range jlist {
			jrec, ok := item.(map[string]any)
			if !ok {
				continue
			}
			label, _ := jrec[labelField].(string)
			if !matchSeries(label, series) {
				continue
			}
			// these feeds are not consistent about numbers vs strings
			switch v := jrec[valueField].(type) {
			case string:
				return v, v != ""
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64), true
			}
			return "", false
		}
		return "", false
	}
}

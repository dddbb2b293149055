package pdb

import "strconv"
import "strings"
import "unicode"

// Entry is one decoded PDB record. There is no schema: any field may be absent.
type Entry map[string]interface{}

// ID returns the entry identifier, or "" when the record has none.
func (e Entry) ID() string {
	if id, ok := String(e, "rcsb_id"); ok {
		return id
	}
	if id, ok := String(e, "entry", "id"); ok {
		return id
	}
	return ""
}

// lookup walks nested objects along path. Arrays on the way are replaced by
// their first element.
func lookup(e Entry, path ...string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(e)
	for _, key := range path {
		cur = first(cur)
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	cur = first(cur)
	return cur, cur != nil
}

func first(v interface{}) interface{} {
	if arr, ok := v.([]interface{}); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return v
}

// Number looks up a numeric field. Numeric strings are accepted.
func Number(e Entry, path ...string) (float64, bool) {
	v, ok := lookup(e, path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String looks up a string field.
func String(e Entry, path ...string) (string, bool) {
	v, ok := lookup(e, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SequenceLength counts residues over every chain of pdbx_seq_one_letter_code,
// ignoring whitespace. Reports false when there is no sequence.
func SequenceLength(e Entry) (int, bool) {
	v, ok := e["pdbx_seq_one_letter_code"]
	if !ok || v == nil {
		return 0, false
	}
	var chains []interface{}
	switch s := v.(type) {
	case string:
		chains = []interface{}{s}
	case []interface{}:
		chains = s
	default:
		return 0, false
	}
	var n int
	for _, c := range chains {
		s, ok := c.(string)
		if !ok {
			continue
		}
		for _, r := range s {
			if !unicode.IsSpace(r) {
				n++
			}
		}
	}
	return n, n > 0
}

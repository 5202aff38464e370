package crmsync

import (
	"encoding/json"
	"strconv"
	"strings"
)

// path is one way of reaching an id inside a decoded response. Numeric
// segments index arrays.
type path []string

var (
	prospectIDPaths    = []path{{"id"}, {"prospect", "id"}}
	customerIDPaths    = []path{{"customer", "id"}, {"customer_id"}}
	jobIDPaths         = []path{{"job", "id"}, {"job_id"}, {"job_ids", "0"}}
	appointmentIDPaths = []path{{"appointment", "id"}}
)

// ExtractIDs reads the identifiers from a prospect creation response. Each id
// is taken from the first path that yields a value; absent paths are skipped.
func ExtractIDs(tree any) RemoteIDs {
	if obj, ok := tree.(map[string]any); ok {
		if inner, ok := obj["data"].(map[string]any); ok {
			tree = inner
		}
	}
	return RemoteIDs{
		ProspectID:    firstMatch(tree, prospectIDPaths),
		CustomerID:    firstMatch(tree, customerIDPaths),
		JobID:         firstMatch(tree, jobIDPaths),
		AppointmentID: firstMatch(tree, appointmentIDPaths),
	}
}

func firstMatch(tree any, paths []path) string {
	for _, p := range paths {
		if id, ok := lookup(tree, p); ok {
			return id
		}
	}
	return ""
}

func lookup(node any, p path) (string, bool) {
	for _, seg := range p {
		switch n := node.(type) {
		case map[string]any:
			next, ok := n[seg]
			if !ok {
				return "", false
			}
			node = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n) {
				return "", false
			}
			node = n[idx]
		default:
			return "", false
		}
	}
	return scalarID(node)
}

func scalarID(v any) (string, bool) {
	switch id := v.(type) {
	case json.Number:
		return id.String(), true
	case string:
		if id = strings.TrimSpace(id); id != "" {
			return id, true
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case int:
		return strconv.Itoa(id), true
	}
	return "", false
}

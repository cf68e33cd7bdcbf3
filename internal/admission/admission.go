// Package admission decides whether an uploaded report is recognized as a
// wipe report. The check is a deliberately permissive substring heuristic,
// not a parser: false positives are an accepted trade-off.
package admission

import "strings"

// Markers are the phrases expected in the extracted text of a
// Linux-generated wipe report, in the order they normally appear.
var Markers = []string{"Wipe Record", "Device", "Wipe Method", "Status"}

// Threshold is the minimum number of markers that must be present.
const Threshold = 3

// Result reports the outcome of an admission check.
type Result struct {
	Matched  int
	Admitted bool
}

// Check searches text for each marker, case-insensitively, and admits the
// document when at least Threshold markers are found.
func Check(text string) Result {
	low := strings.ToLower(text)
	matched := 0
	for _, m := range Markers {
		if strings.Contains(low, strings.ToLower(m)) {
			matched++
		}
	}
	return Result{Matched: matched, Admitted: matched >= Threshold}
}

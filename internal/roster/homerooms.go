// Package roster holds the static school configuration: homeroom to period
// mapping, pod roles, the assessment question sets and the seed roster.
package roster

import (
	"sort"
	"strings"

	"github.com/noah-isme/pod-grading-api/internal/models"
)

// PeriodInfo describes the class period a homeroom attends.
type PeriodInfo struct {
	Homeroom string `json:"homeroom"`
	Period   int    `json:"period"`
	Name     string `json:"name"`
}

var periodMapping = map[string]PeriodInfo{
	"7C": {Homeroom: "7C", Period: 1, Name: "1st Period"},
	"7D": {Homeroom: "7D", Period: 3, Name: "3rd Period"},
	"7E": {Homeroom: "7E", Period: 4, Name: "4th Period"},
	"7A": {Homeroom: "7A", Period: 8, Name: "8th Period"},
	"7B": {Homeroom: "7B", Period: 9, Name: "9th Period"},
}

// LookupHomeroom resolves the period for a homeroom code. Codes match exactly.
func LookupHomeroom(homeroom string) (PeriodInfo, bool) {
	info, ok := periodMapping[homeroom]
	return info, ok
}

// ResolvePeriod returns the period pointer and display name derived from a
// homeroom. Unknown homerooms yield a nil period and "Unassigned".
func ResolvePeriod(homeroom string) (*int, string) {
	info, ok := periodMapping[strings.TrimSpace(homeroom)]
	if !ok {
		return nil, models.UnassignedPeriodName
	}
	return models.IntPtr(info.Period), info.Name
}

// Periods lists the configured periods ordered by period number.
func Periods() []PeriodInfo {
	out := make([]PeriodInfo, 0, len(periodMapping))
	for _, info := range periodMapping {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// PeriodName returns the display name for a period number.
func PeriodName(period int) string {
	for _, info := range periodMapping {
		if info.Period == period {
			return info.Name
		}
	}
	return models.UnassignedPeriodName
}

package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// SearchQuery filters the donor list. Zero values match everything.
type SearchQuery struct {
	BloodGroup BloodGroup
	City       string
	Compatible bool
}

// FilterDonors returns the donors matching q, preserving input order.
//
// With Compatible set, BloodGroup is the patient's group and any donor whose
// group can be transfused into it passes; otherwise only exact matches pass.
// City is a case-insensitive substring match.
func FilterDonors(donors []Donor, q SearchQuery) []Donor {
	fold := cases.Fold()
	city := fold.String(strings.TrimSpace(q.City))

	var accept map[BloodGroup]bool
	if q.BloodGroup != "" {
		accept = map[BloodGroup]bool{q.BloodGroup: true}
		if q.Compatible {
			accept = make(map[BloodGroup]bool)
			for _, g := range CompatibleDonorGroups(q.BloodGroup) {
				accept[g] = true
			}
		}
	}

	out := make([]Donor, 0, len(donors))
	for _, d := range donors {
		if accept != nil && !accept[d.BloodGroup] {
			continue
		}
		if city != "" && !strings.Contains(fold.String(d.City), city) {
			continue
		}
		out = append(out, d)
	}
	return out
}

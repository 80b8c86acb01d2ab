package domain

import "strings"

// BloodGroup is one of the eight ABO/Rh groups.
type BloodGroup string

const (
	GroupAPos  BloodGroup = "A+"
	GroupANeg  BloodGroup = "A-"
	GroupBPos  BloodGroup = "B+"
	GroupBNeg  BloodGroup = "B-"
	GroupABPos BloodGroup = "AB+"
	GroupABNeg BloodGroup = "AB-"
	GroupOPos  BloodGroup = "O+"
	GroupONeg  BloodGroup = "O-"
)

// BloodGroups lists every group in display order.
var BloodGroups = []BloodGroup{
	GroupAPos, GroupANeg,
	GroupBPos, GroupBNeg,
	GroupABPos, GroupABNeg,
	GroupOPos, GroupONeg,
}

// compatibleDonors maps a recipient group to the donor groups it can receive.
var compatibleDonors = map[BloodGroup][]BloodGroup{
	GroupAPos:  {GroupAPos, GroupANeg, GroupOPos, GroupONeg},
	GroupANeg:  {GroupANeg, GroupONeg},
	GroupBPos:  {GroupBPos, GroupBNeg, GroupOPos, GroupONeg},
	GroupBNeg:  {GroupBNeg, GroupONeg},
	GroupABPos: {GroupAPos, GroupANeg, GroupBPos, GroupBNeg, GroupABPos, GroupABNeg, GroupOPos, GroupONeg},
	GroupABNeg: {GroupABNeg, GroupANeg, GroupBNeg, GroupONeg},
	GroupOPos:  {GroupOPos, GroupONeg},
	GroupONeg:  {GroupONeg},
}

// ParseBloodGroup accepts a group in any letter case, e.g. "ab+".
func ParseBloodGroup(s string) (BloodGroup, error) {
	g := BloodGroup(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", Invalid("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	return g, nil
}

func (g BloodGroup) Valid() bool {
	_, ok := compatibleDonors[g]
	return ok
}

func (g BloodGroup) String() string { return string(g) }

// CompatibleDonorGroups returns the donor groups that can give blood to a
// patient of group g. Unknown groups only match themselves.
func CompatibleDonorGroups(g BloodGroup) []BloodGroup {
	groups, ok := compatibleDonors[g]
	if !ok {
		return []BloodGroup{g}
	}
	return append([]BloodGroup(nil), groups...)
}

// CanDonate reports whether a donor of group donor can give to recipient.
func CanDonate(donor, recipient BloodGroup) bool {
	for _, g := range CompatibleDonorGroups(recipient) {
		if g == donor {
			return true
		}
	}
	return false
}

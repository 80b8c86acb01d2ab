package service

import (
	"context"

	"bloodlink/internal/domain"
)

// NoMostNeeded is reported when there are no requests.
const NoMostNeeded = "-"

// GroupCount is the number of records for one blood group.
type GroupCount struct {
	BloodGroup domain.BloodGroup `json:"bloodGroup"`
	Count      int               `json:"count"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalDonors      int               `json:"totalDonors"`
	TotalRequests    int               `json:"totalRequests"`
	MostNeeded       string            `json:"mostNeeded"`
	DonorsByGroup    []GroupCount      `json:"donorsByGroup"`
	RequestsByGroup  []GroupCount      `json:"requestsByGroup"`
	RecentActivities []domain.Activity `json:"recentActivities"`
}

// Stats aggregates the collections for the dashboard.
type Stats struct {
	donors   *Donors
	requests *Requests
	activity *ActivityLog
	recent   int
}

func NewStats(donors *Donors, requests *Requests, activity *ActivityLog, recent int) *Stats {
	if recent <= 0 {
		recent = 10
	}
	return &Stats{donors: donors, requests: requests, activity: activity, recent: recent}
}

func (s *Stats) Dashboard(ctx context.Context) (Dashboard, error) {
	donors, err := s.donors.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	requests, err := s.requests.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := s.activity.Recent(ctx, s.recent)
	if err != nil {
		return Dashboard{}, err
	}

	donorGroups := make([]domain.BloodGroup, len(donors))
	for i, d := range donors {
		donorGroups[i] = d.BloodGroup
	}
	requestGroups := make([]domain.BloodGroup, len(requests))
	for i, r := range requests {
		requestGroups[i] = r.BloodGroup
	}

	return Dashboard{
		TotalDonors:      len(donors),
		TotalRequests:    len(requests),
		MostNeeded:       MostNeeded(requestGroups),
		DonorsByGroup:    CountByGroup(donorGroups),
		RequestsByGroup:  CountByGroup(requestGroups),
		RecentActivities: recent,
	}, nil
}

// MostNeeded returns the most requested group. Groups are compared in order
// of first appearance and a tie goes to the later one.
func MostNeeded(groups []domain.BloodGroup) string {
	if len(groups) == 0 {
		return NoMostNeeded
	}
	counts := make(map[domain.BloodGroup]int)
	var order []domain.BloodGroup
	for _, g := range groups {
		if _, seen := counts[g]; !seen {
			order = append(order, g)
		}
		counts[g]++
	}
	best := order[0]
	for _, g := range order[1:] {
		if counts[best] <= counts[g] {
			best = g
		}
	}
	return best.String()
}

// CountByGroup counts groups for all eight blood groups in display order.
// Unknown groups are ignored.
func CountByGroup(groups []domain.BloodGroup) []GroupCount {
	counts := make(map[domain.BloodGroup]int, len(domain.BloodGroups))
	for _, g := range groups {
		counts[g]++
	}
	out := make([]GroupCount, len(domain.BloodGroups))
	for i, g := range domain.BloodGroups {
		out[i] = GroupCount{BloodGroup: g, Count: counts[g]}
	}
	return out
}

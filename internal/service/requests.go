package service

import (
	"context"
	"fmt"

	"bloodlink/internal/domain"
	"bloodlink/internal/store"
)

// Requests manages public blood requests.
type Requests struct {
	requests *store.Table[domain.BloodRequest]
	activity *ActivityLog
	options
}

func NewRequests(table *store.Table[domain.BloodRequest], activity *ActivityLog, opts ...Option) *Requests {
	return &Requests{requests: table, activity: activity, options: buildOptions(opts)}
}

// Post validates r and stores it under a fresh id.
func (s *Requests) Post(ctx context.Context, r domain.BloodRequest) (domain.BloodRequest, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return domain.BloodRequest{}, err
	}
	r.ID = s.newID()
	if err := s.requests.Create(ctx, r); err != nil {
		return domain.BloodRequest{}, err
	}
	logActivity(ctx, s.activity, s.logger, fmt.Sprintf("New blood request posted for %s in %s", r.BloodGroup, r.City))
	return r, nil
}

func (s *Requests) List(ctx context.Context) ([]domain.BloodRequest, error) {
	return s.requests.List(ctx)
}

// Edit changes units, date or contact phone of a request.
func (s *Requests) Edit(ctx context.Context, id string, patch domain.RequestPatch) (domain.BloodRequest, error) {
	if patch.Empty() {
		return domain.BloodRequest{}, domain.Invalid("patch", "no fields to update")
	}
	if err := patch.Validate(); err != nil {
		return domain.BloodRequest{}, err
	}
	req, err := s.requests.Find(ctx, id)
	if err != nil {
		return domain.BloodRequest{}, err
	}
	applied := patch.Apply(req)
	if patch.Date != nil {
		patch.Date = &applied.Date
	}
	if patch.Phone != nil {
		patch.Phone = &applied.Phone
	}
	if err := s.requests.Update(ctx, id, patch); err != nil {
		return domain.BloodRequest{}, err
	}
	logActivity(ctx, s.activity, s.logger, "Blood request updated for "+applied.BloodGroup.String())
	return applied, nil
}

// Resolve removes a fulfilled or withdrawn request.
func (s *Requests) Resolve(ctx context.Context, id string) error {
	req, err := s.requests.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		return err
	}
	logActivity(ctx, s.activity, s.logger, "Blood request deleted for "+req.BloodGroup.String())
	return nil
}

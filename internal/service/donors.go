package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bloodlink/internal/domain"
	"bloodlink/internal/otp"
	"bloodlink/internal/store"
)

// Donors runs the donor lifecycle: registration, search, admin edits and the
// verified donation-date update.
type Donors struct {
	donors   *store.Table[domain.Donor]
	activity *ActivityLog
	otp      *otp.Service

	requireVerification bool
	options
}

// DonorsConfig wires a Donors service.
type DonorsConfig struct {
	Table    *store.Table[domain.Donor]
	Activity *ActivityLog
	OTP      *otp.Service
	// RequireVerification makes an email code mandatory at registration.
	RequireVerification bool
}

func NewDonors(cfg DonorsConfig, opts ...Option) *Donors {
	return &Donors{
		donors:              cfg.Table,
		activity:            cfg.Activity,
		otp:                 cfg.OTP,
		requireVerification: cfg.RequireVerification,
		options:             buildOptions(opts),
	}
}

// Register validates d and stores it under a fresh id. When code is set, or
// verification is required, code must verify for the donor's email first.
func (s *Donors) Register(ctx context.Context, d domain.Donor, code string) (domain.Donor, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Donor{}, err
	}
	if code != "" || s.requireVerification {
		if code == "" {
			return domain.Donor{}, domain.Invalid("otp", "email verification code is required")
		}
		if err := s.verify(d.Email, code); err != nil {
			return domain.Donor{}, err
		}
	}
	d.ID = s.newID()
	if err := s.donors.Create(ctx, d); err != nil {
		return domain.Donor{}, err
	}
	s.recorder.ObserveRegistration()
	logActivity(ctx, s.activity, s.logger, fmt.Sprintf("New donor registered: %s (%s)", d.Name, d.BloodGroup))
	return d, nil
}

func (s *Donors) List(ctx context.Context) ([]domain.Donor, error) {
	return s.donors.List(ctx)
}

func (s *Donors) Get(ctx context.Context, id string) (domain.Donor, error) {
	return s.donors.Find(ctx, id)
}

// Search filters the donor list. An unknown blood group is rejected rather
// than silently matching nothing.
func (s *Donors) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Donor, error) {
	if q.BloodGroup != "" && !q.BloodGroup.Valid() {
		return nil, domain.Invalid("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	donors, err := s.donors.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterDonors(donors, q), nil
}

// Edit applies an admin correction. The last-donation date only changes
// through the verified flow.
func (s *Donors) Edit(ctx context.Context, id string, patch domain.DonorPatch) (domain.Donor, error) {
	if patch.LastDonation != nil {
		return domain.Donor{}, domain.Invalid("lastDonation", "can only be changed after email verification")
	}
	if patch.Empty() {
		return domain.Donor{}, domain.Invalid("patch", "no fields to update")
	}
	if err := patch.Validate(); err != nil {
		return domain.Donor{}, err
	}
	donor, err := s.donors.Find(ctx, id)
	if err != nil {
		return domain.Donor{}, err
	}
	if err := s.donors.Update(ctx, id, trimDonorPatch(patch)); err != nil {
		return domain.Donor{}, err
	}
	donor = patch.Apply(donor)
	logActivity(ctx, s.activity, s.logger, "Donor updated: "+donor.Name)
	return donor, nil
}

func (s *Donors) Delete(ctx context.Context, id string) error {
	donor, err := s.donors.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.donors.Delete(ctx, id); err != nil {
		return err
	}
	logActivity(ctx, s.activity, s.logger, "Donor deleted: "+donor.Name)
	return nil
}

// SendVerification mails a registration code to email.
func (s *Donors) SendVerification(ctx context.Context, email string) (otp.Code, error) {
	email = strings.TrimSpace(email)
	if err := domain.ValidateEmail(email); err != nil {
		return otp.Code{}, err
	}
	code, err := s.otp.Send(ctx, email)
	if err != nil {
		return otp.Code{}, err
	}
	s.recorder.ObserveOTPSent()
	return code, nil
}

// VerifyEmail consumes the pending code for email.
func (s *Donors) VerifyEmail(email, code string) error {
	return s.verify(email, strings.TrimSpace(code))
}

// StartDonationUpdate sends a verification code to the donor's stored email.
func (s *Donors) StartDonationUpdate(ctx context.Context, id string) (domain.Donor, otp.Code, error) {
	donor, err := s.donors.Find(ctx, id)
	if err != nil {
		return domain.Donor{}, otp.Code{}, err
	}
	code, err := s.otp.Send(ctx, donor.Email)
	if err != nil {
		return domain.Donor{}, otp.Code{}, err
	}
	s.recorder.ObserveOTPSent()
	return donor, code, nil
}

// ConfirmDonationUpdate commits date as the donor's last donation once code
// verifies for the donor's email.
func (s *Donors) ConfirmDonationUpdate(ctx context.Context, id, code, date string) (domain.Donor, error) {
	if err := domain.ValidateDate("lastDonation", date); err != nil {
		return domain.Donor{}, err
	}
	donor, err := s.donors.Find(ctx, id)
	if err != nil {
		return domain.Donor{}, err
	}
	if err := s.verify(donor.Email, code); err != nil {
		return domain.Donor{}, err
	}
	patch := domain.DonorPatch{LastDonation: &date}
	if err := s.donors.Update(ctx, id, patch); err != nil {
		return domain.Donor{}, err
	}
	donor = patch.Apply(donor)
	logActivity(ctx, s.activity, s.logger, fmt.Sprintf("Donor %s updated last donation date after email verification", donor.Name))
	return donor, nil
}

// ExportCSV writes every donor as CSV and records the export.
func (s *Donors) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	donors, err := s.donors.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(donors) == 0 {
		return 0, domain.ErrNoDonors
	}
	if err := WriteDonorsCSV(w, donors); err != nil {
		return 0, err
	}
	logActivity(ctx, s.activity, s.logger, "Admin exported donor list to CSV")
	return len(donors), nil
}

func (s *Donors) verify(email, code string) error {
	err := s.otp.Verify(email, code)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrOTPExpired):
		outcome = "expired"
	case errors.Is(err, domain.ErrOTPMismatch):
		outcome = "mismatch"
	default:
		outcome = "not_found"
	}
	s.recorder.ObserveOTPVerification(outcome)
	return err
}

func trimDonorPatch(p domain.DonorPatch) domain.DonorPatch {
	applied := p.Apply(domain.Donor{})
	if p.Name != nil {
		p.Name = &applied.Name
	}
	if p.City != nil {
		p.City = &applied.City
	}
	if p.Phone != nil {
		p.Phone = &applied.Phone
	}
	return p
}

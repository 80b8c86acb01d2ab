package domain

import "strings"

// BloodRequest is a patient's public request for blood units.
type BloodRequest struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	BloodGroup BloodGroup `json:"bloodGroup"`
	Units      FlexInt    `json:"units"`
	City       string     `json:"city"`
	Phone      string     `json:"phone"`
	Date       string     `json:"date"`
}

func (r BloodRequest) RecordID() string { return r.ID }

func (r BloodRequest) Normalize() BloodRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.BloodGroup = BloodGroup(strings.ToUpper(strings.TrimSpace(string(r.BloodGroup))))
	r.City = strings.TrimSpace(r.City)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Date = strings.TrimSpace(r.Date)
	return r
}

// Validate requires every field and a 10-digit contact phone.
func (r BloodRequest) Validate() error {
	if r.Name == "" {
		return Invalid("name", "is required")
	}
	if r.BloodGroup == "" {
		return Invalid("bloodGroup", "is required")
	}
	if !r.BloodGroup.Valid() {
		return Invalid("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	if r.Units <= 0 {
		return Invalid("units", "must be at least 1")
	}
	if r.City == "" {
		return Invalid("city", "is required")
	}
	if err := ValidatePhone(r.Phone); err != nil {
		return err
	}
	if r.Date == "" {
		return Invalid("date", "is required")
	}
	return ValidateDate("date", r.Date)
}

// RequestPatch edits the mutable fields of a request.
type RequestPatch struct {
	Units *int    `json:"units,omitempty"`
	Date  *string `json:"date,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

func (p RequestPatch) Validate() error {
	if p.Units != nil && *p.Units <= 0 {
		return Invalid("units", "must be at least 1")
	}
	if p.Date != nil {
		if err := ValidateDate("date", *p.Date); err != nil {
			return err
		}
	}
	if p.Phone != nil {
		if err := ValidatePhone(strings.TrimSpace(*p.Phone)); err != nil {
			return err
		}
	}
	return nil
}

func (p RequestPatch) Empty() bool {
	return p.Units == nil && p.Date == nil && p.Phone == nil
}

func (p RequestPatch) Apply(r BloodRequest) BloodRequest {
	if p.Units != nil {
		r.Units = FlexInt(*p.Units)
	}
	if p.Date != nil {
		r.Date = strings.TrimSpace(*p.Date)
	}
	if p.Phone != nil {
		r.Phone = strings.TrimSpace(*p.Phone)
	}
	return r
}

package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

const (
	MinDonorAge = 18
	MaxDonorAge = 65

	// DateLayout is the calendar date format used by form date inputs.
	DateLayout = "2006-01-02"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Donor is a registered blood donor.
type Donor struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Age          FlexInt    `json:"age"`
	Gender       string     `json:"gender"`
	BloodGroup   BloodGroup `json:"bloodGroup"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	City         string     `json:"city"`
	LastDonation string     `json:"lastDonation,omitempty"`
}

func (d Donor) RecordID() string { return d.ID }

// Normalize trims surrounding whitespace from every text field.
func (d Donor) Normalize() Donor {
	d.Name = strings.TrimSpace(d.Name)
	d.Gender = strings.TrimSpace(d.Gender)
	d.BloodGroup = BloodGroup(strings.ToUpper(strings.TrimSpace(string(d.BloodGroup))))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.TrimSpace(d.Email)
	d.City = strings.TrimSpace(d.City)
	d.LastDonation = strings.TrimSpace(d.LastDonation)
	return d
}

// Validate checks a registration form. Age and phone rules come first so the
// caller sees the same message order as the registration form.
func (d Donor) Validate() error {
	if err := ValidateAge(d.Age.Int()); err != nil {
		return err
	}
	if err := ValidatePhone(d.Phone); err != nil {
		return err
	}
	if d.Name == "" {
		return Invalid("name", "is required")
	}
	if d.Gender == "" {
		return Invalid("gender", "is required")
	}
	if !d.BloodGroup.Valid() {
		return Invalid("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	if err := ValidateEmail(d.Email); err != nil {
		return err
	}
	if d.City == "" {
		return Invalid("city", "is required")
	}
	if d.LastDonation != "" {
		if err := ValidateDate("lastDonation", d.LastDonation); err != nil {
			return err
		}
	}
	return nil
}

// DonorPatch is a partial donor update. Nil fields are left untouched and are
// omitted from the encoded patch.
type DonorPatch struct {
	Name         *string `json:"name,omitempty"`
	Age          *int    `json:"age,omitempty"`
	City         *string `json:"city,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	LastDonation *string `json:"lastDonation,omitempty"`
}

// Validate applies the registration rules to the fields present.
func (p DonorPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return Invalid("name", "is required")
	}
	if p.Age != nil {
		if err := ValidateAge(*p.Age); err != nil {
			return err
		}
	}
	if p.City != nil && strings.TrimSpace(*p.City) == "" {
		return Invalid("city", "is required")
	}
	if p.Phone != nil {
		if err := ValidatePhone(strings.TrimSpace(*p.Phone)); err != nil {
			return err
		}
	}
	if p.LastDonation != nil {
		if err := ValidateDate("lastDonation", *p.LastDonation); err != nil {
			return err
		}
	}
	return nil
}

func (p DonorPatch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.City == nil && p.Phone == nil && p.LastDonation == nil
}

// Apply returns d with the patch fields merged in.
func (p DonorPatch) Apply(d Donor) Donor {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Age != nil {
		d.Age = FlexInt(*p.Age)
	}
	if p.City != nil {
		d.City = strings.TrimSpace(*p.City)
	}
	if p.Phone != nil {
		d.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.LastDonation != nil {
		d.LastDonation = strings.TrimSpace(*p.LastDonation)
	}
	return d
}

func ValidateAge(age int) error {
	if age < MinDonorAge || age > MaxDonorAge {
		return Invalid("age", "must be between 18 and 65")
	}
	return nil
}

func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return Invalid("phone", "must be exactly 10 digits")
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return Invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Invalid("email", "is not a valid address")
	}
	return nil
}

func ValidateDate(field, value string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(value)); err != nil {
		return Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return nil
}

package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

var serialRe = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// EquipmentInput is the untrusted request body for equipment
// create/update.
type EquipmentInput struct {
	Name         string  `json:"name"`
	CategoryID   uint64  `json:"category_id"`
	Brand        string  `json:"brand"`
	SerialNumber string  `json:"serial_number"`
	Status       string  `json:"status"`
	PurchaseDate string  `json:"purchase_date"`
	AssignedTo   *uint64 `json:"assigned_to"`
	Notes        string  `json:"notes"`
}

// EquipmentFields is the sanitized output. AssignedTo stays nil when
// the item is unassigned.
type EquipmentFields struct {
	Name         string
	CategoryID   uint64
	Brand        string
	SerialNumber string
	Status       string
	PurchaseDate string
	AssignedTo   *uint64
	Notes        string
}

// Equipment validates an equipment payload. Every field except
// assigned_to and notes is required; the rules are identical for
// create and update.
func Equipment(in EquipmentInput) (EquipmentFields, error) {
	var errs []string

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs = append(errs, "name is required.")
	} else if len(name) > 150 {
		errs = append(errs, "name must be ≤ 150 characters.")
	}

	if in.CategoryID == 0 {
		errs = append(errs, "category_id is required.")
	}

	brand := strings.TrimSpace(in.Brand)
	if brand == "" {
		errs = append(errs, "brand is required.")
	} else if len(brand) > 80 {
		errs = append(errs, "brand must be ≤ 80 characters.")
	}

	serial := strings.TrimSpace(in.SerialNumber)
	switch {
	case serial == "":
		errs = append(errs, "serial_number is required.")
	case len(serial) > 100:
		errs = append(errs, "serial_number must be ≤ 100 characters.")
	case !serialRe.MatchString(serial):
		errs = append(errs, "serial_number may only contain letters, digits, hyphens, underscores.")
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.StatusAvailable
	}
	if !validStatus(status) {
		errs = append(errs, "status must be one of: "+strings.Join(model.Statuses, ", "))
	}

	date := strings.TrimSpace(in.PurchaseDate)
	if date == "" {
		errs = append(errs, "purchase_date is required (YYYY-MM-DD).")
	} else if !validDate(date) {
		errs = append(errs, "purchase_date must be a valid date in YYYY-MM-DD format.")
	}

	if in.AssignedTo != nil && *in.AssignedTo == 0 {
		errs = append(errs, "assigned_to must reference a user.")
	}

	notes := strings.TrimSpace(in.Notes)
	if len(notes) > 5000 {
		errs = append(errs, "notes must be ≤ 5000 characters.")
	}

	if len(errs) > 0 {
		return EquipmentFields{}, joinErrors(errs)
	}

	return EquipmentFields{
		Name:         Escape(name),
		CategoryID:   in.CategoryID,
		Brand:        Escape(brand),
		SerialNumber: serial,
		Status:       status,
		PurchaseDate: date,
		AssignedTo:   in.AssignedTo,
		Notes:        Escape(notes),
	}, nil
}

func validStatus(s string) bool {
	for _, v := range model.Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// validDate requires a real calendar date that round-trips through
// YYYY-MM-DD unchanged, which rejects both malformed strings and
// impossible dates like 2024-02-30.
func validDate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	return err == nil && t.Format("2006-01-02") == s
}

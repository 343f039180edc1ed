package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

func validEquipmentInput() EquipmentInput {
	return EquipmentInput{
		Name:         "ThinkPad X1",
		CategoryID:   3,
		Brand:        "Lenovo",
		SerialNumber: "SN-2024_001",
		Status:       model.StatusAvailable,
		PurchaseDate: "2024-03-15",
		Notes:        "Dock included",
	}
}

func TestEquipmentValid(t *testing.T) {
	out, err := Equipment(validEquipmentInput())
	require.NoError(t, err)
	require.Equal(t, "ThinkPad X1", out.Name)
	require.Equal(t, uint64(3), out.CategoryID)
	require.Equal(t, "SN-2024_001", out.SerialNumber)
	require.Equal(t, "2024-03-15", out.PurchaseDate)
	require.Nil(t, out.AssignedTo)
}

func TestEquipmentStatusDefaultsToAvailable(t *testing.T) {
	in := validEquipmentInput()
	in.Status = ""
	out, err := Equipment(in)
	require.NoError(t, err)
	require.Equal(t, model.StatusAvailable, out.Status)
}

func TestEquipmentErrors(t *testing.T) {
	mutate := func(f func(*EquipmentInput)) EquipmentInput {
		in := validEquipmentInput()
		f(&in)
		return in
	}
	cases := []struct {
		name string
		in   EquipmentInput
		want string
	}{
		{"missing name", mutate(func(in *EquipmentInput) { in.Name = "" }), "name is required."},
		{"missing category", mutate(func(in *EquipmentInput) { in.CategoryID = 0 }), "category_id is required."},
		{"missing brand", mutate(func(in *EquipmentInput) { in.Brand = "" }), "brand is required."},
		{"serial with spaces", mutate(func(in *EquipmentInput) { in.SerialNumber = "SN 001" }), "letters, digits, hyphens, underscores"},
		{"unknown status", mutate(func(in *EquipmentInput) { in.Status = "Broken" }), "status must be one of:"},
		{"missing date", mutate(func(in *EquipmentInput) { in.PurchaseDate = "" }), "purchase_date is required"},
		{"malformed date", mutate(func(in *EquipmentInput) { in.PurchaseDate = "15/03/2024" }), "YYYY-MM-DD format"},
		{"impossible date", mutate(func(in *EquipmentInput) { in.PurchaseDate = "2024-02-30" }), "YYYY-MM-DD format"},
		{"zero assignee", mutate(func(in *EquipmentInput) { z := uint64(0); in.AssignedTo = &z }), "assigned_to must reference a user."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Equipment(tc.in)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestEquipmentEscapesFreeText(t *testing.T) {
	in := validEquipmentInput()
	in.Notes = `<img src=x onerror="alert(1)">`
	out, err := Equipment(in)
	require.NoError(t, err)
	require.NotContains(t, out.Notes, "<img")
	require.Contains(t, out.Notes, "&lt;img")
}

func TestEquipmentAssigneePassedThrough(t *testing.T) {
	in := validEquipmentInput()
	uid := uint64(42)
	in.AssignedTo = &uid
	out, err := Equipment(in)
	require.NoError(t, err)
	require.NotNil(t, out.AssignedTo)
	require.Equal(t, uint64(42), *out.AssignedTo)
}

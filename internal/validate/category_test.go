package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	out, err := Category(CategoryInput{Name: "  Laptops  ", Description: "Portable machines"})
	require.NoError(t, err)
	require.Equal(t, "Laptops", out.Name)
	require.Equal(t, "Portable machines", out.Description)
}

func TestCategoryErrors(t *testing.T) {
	cases := []struct {
		name string
		in   CategoryInput
		want string
	}{
		{"empty name", CategoryInput{}, "name is required."},
		{"whitespace name", CategoryInput{Name: "   "}, "name is required."},
		{"long name", CategoryInput{Name: strings.Repeat("x", 101)}, "≤ 100 characters"},
		{"long description", CategoryInput{Name: "ok", Description: strings.Repeat("x", 1001)}, "≤ 1000 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Category(tc.in)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCategoryEscapesHTML(t *testing.T) {
	out, err := Category(CategoryInput{Name: "A&B <tools>"})
	require.NoError(t, err)
	require.Equal(t, "A&amp;B &lt;tools&gt;", out.Name)
}

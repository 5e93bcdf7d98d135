package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistries_RoundTrip(t *testing.T) {
	for _, r := range Registries() {
		t.Run(r.Name(), func(t *testing.T) {
			labels := r.Labels()
			entries := r.Entries()
			require.Len(t, labels, len(entries))

			for i, e := range entries {
				code, err := r.CodeOf(labels[i])
				require.NoError(t, err)
				assert.Equal(t, e.Code, code)

				label, ok := r.Label(e.Code)
				assert.True(t, ok)
				assert.Equal(t, labels[i], label)
			}
		})
	}
}

func TestRegistries_PlaceholderFirst(t *testing.T) {
	for _, r := range Registries() {
		entries := r.Entries()
		require.NotEmpty(t, entries)
		assert.Equal(t, PlaceholderCode, entries[0].Code, r.Name())
		assert.Equal(t, r.Placeholder(), entries[0].Label, r.Name())
	}
}

func TestRegistry_LabelsInCodeOrder(t *testing.T) {
	entries := Light.Entries()
	codes := make([]int, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	assert.Equal(t, []int{0, 1, 4, 5, 6, 7}, codes)
	assert.Equal(t, "Daylight", Light.Labels()[1])
}

func TestRegistry_KnownCodes(t *testing.T) {
	tests := []struct {
		registry *Registry
		label    string
		code     int
	}{
		{VehicleTypes, "Car", 9},
		{VehicleTypes, "Goods vehicle-unknown weight", 98},
		{Days, "Monday", 2},
		{Weather, "Fine no high winds", 1},
		{Light, "Darkness - lighting unknown", 7},
		{RoadSurfaces, "Dry", 1},
		{Genders, "Male", 1},
	}
	for _, tt := range tests {
		code, err := tt.registry.CodeOf(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.code, code, tt.label)
	}
}

func TestRegistry_CodeOfUnknownLabel(t *testing.T) {
	_, err := Days.CodeOf("Funday")
	require.ErrorIs(t, err, ErrLookup)
	assert.Contains(t, err.Error(), "Funday")
}

func TestRegistry_SelectionOfRejectsPlaceholder(t *testing.T) {
	_, err := Genders.SelectionOf("Gender")
	require.ErrorIs(t, err, ErrPlaceholder)
	assert.Contains(t, err.Error(), "Gender")

	code, err := Genders.SelectionOf("Female")
	require.NoError(t, err)
	assert.Equal(t, 2, code)
}

func TestNewRegistry_DuplicateCodePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry("dup", "Dup", Entry{0, "a"}, Entry{0, "b"})
	})
	assert.Panics(t, func() {
		NewRegistry("dup", "Dup", Entry{0, "a"}, Entry{1, "a"})
	})
}

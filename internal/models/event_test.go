package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromTag(t *testing.T) {
	k, err := KindFromTag(TagCustodyPrimary, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, CustodyPrimary{Parent: "p1"}, k)

	k, err = KindFromTag(TagCustodyVacation, "p2", "Summer")
	require.NoError(t, err)
	assert.Equal(t, CustodyVacation{Parent: "p2"}, k)

	k, err = KindFromTag(TagSpecialEvent, "", "School play")
	require.NoError(t, err)
	assert.Equal(t, SpecialEvent{Title: "School play"}, k)

	k, err = KindFromTag(TagPublicHoliday, "", "")
	require.NoError(t, err)
	assert.Equal(t, TagPublicHoliday, k.Tag())

	for _, bad := range []struct {
		tag          KindTag
		parent, name string
	}{
		{TagCustodyPrimary, "", ""},
		{TagCustodyVacation, "", "x"},
		{TagSpecialEvent, "p1", ""},
		{"gardePapa", "p1", ""},
	} {
		_, err := KindFromTag(bad.tag, bad.parent, bad.name)
		assert.ErrorIs(t, err, ErrInvalidEvent, string(bad.tag))
	}
}

func TestCalendarEvent_Validate(t *testing.T) {
	day := MustParseDate("2024-05-01")

	tests := []struct {
		name  string
		event CalendarEvent
		ok    bool
	}{
		{"custody", CalendarEvent{Kind: CustodyPrimary{Parent: "p1"}, Start: day, End: day.AddDays(6)}, true},
		{"single day holiday", CalendarEvent{Kind: PublicHoliday{}, Start: day, End: day}, true},
		{"special with title", CalendarEvent{Kind: SpecialEvent{Title: "Recital"}, Start: day, End: day}, true},
		{"missing kind", CalendarEvent{Start: day, End: day}, false},
		{"end before start", CalendarEvent{Kind: PublicHoliday{}, Start: day, End: day.AddDays(-1)}, false},
		{"custody without parent", CalendarEvent{Kind: CustodyPrimary{}, Start: day, End: day}, false},
		{"vacation without parent", CalendarEvent{Kind: CustodyVacation{}, Start: day, End: day}, false},
		{"special without title", CalendarEvent{Kind: SpecialEvent{}, Start: day, End: day}, false},
		{"missing dates", CalendarEvent{Kind: PublicHoliday{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidEvent)
			}
		})
	}
}

func TestCalendarEvent_Helpers(t *testing.T) {
	e := CalendarEvent{
		Kind:  CustodyVacation{Parent: "p2"},
		Start: MustParseDate("2024-07-01"),
		End:   MustParseDate("2024-07-14"),
		Title: "Summer",
	}
	assert.True(t, e.IsCustody())
	assert.Equal(t, ParentRef("p2"), e.Parent())
	assert.Equal(t, 14, e.Days())
	assert.True(t, e.Contains(MustParseDate("2024-07-14")))
	assert.False(t, e.Contains(MustParseDate("2024-07-15")))
	assert.True(t, e.Overlaps(MustParseDate("2024-06-24"), MustParseDate("2024-07-01")))
	assert.False(t, e.Overlaps(MustParseDate("2024-07-15"), MustParseDate("2024-07-21")))
	assert.Equal(t, "Summer", e.StoredTitle())
	assert.Equal(t, "Summer", e.Label())

	special := CalendarEvent{Kind: SpecialEvent{Title: "Recital"}, Title: "ignored"}
	assert.False(t, special.IsCustody())
	assert.Equal(t, ParentRef(""), special.Parent())
	assert.Equal(t, "Recital", special.StoredTitle())
	assert.Equal(t, "Recital", special.Label())

	holiday := CalendarEvent{Kind: PublicHoliday{}}
	assert.Equal(t, "Public holiday", holiday.Label())
}

func TestNewParentPair(t *testing.T) {
	a := Parent{Ref: "a", Role: RoleParentA}
	b := Parent{Ref: "b", Role: RoleParentB}

	pair, err := NewParentPair([]Parent{b, a})
	require.NoError(t, err)
	assert.Equal(t, a, pair.ByRole(RoleParentA))
	assert.Equal(t, a, pair.Other(RoleParentB))
	assert.Equal(t, b, pair.Other(RoleParentA))

	_, err = NewParentPair([]Parent{a})
	assert.ErrorIs(t, err, ErrIncompletePair)

	r, err := ParseRole("b")
	require.NoError(t, err)
	assert.Equal(t, RoleParentB, r)
	_, err = ParseRole("Papa")
	assert.Error(t, err)

	r, err = ResolveRole("me", RoleParentB)
	require.NoError(t, err)
	assert.Equal(t, RoleParentB, r)
	r, err = ResolveRole("Other", RoleParentB)
	require.NoError(t, err)
	assert.Equal(t, RoleParentA, r)
	r, err = ResolveRole(" Parent A ", RoleParentB)
	require.NoError(t, err)
	assert.Equal(t, RoleParentA, r)
}

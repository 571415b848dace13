package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the display label of a parent within a family.
type Role string

const (
	RoleParentA Role = "Parent A"
	RoleParentB Role = "Parent B"
)

// ParseRole accepts the display label or a short form ("a", "parent_b").
func ParseRole(s string) (Role, error) {
	switch s {
	case string(RoleParentA), "a", "A", "parent_a", "parentA", "parenta":
		return RoleParentA, nil
	case string(RoleParentB), "b", "B", "parent_b", "parentB", "parentb":
		return RoleParentB, nil
	}
	return "", fmt.Errorf("unknown parent role %q", s)
}

// ResolveRole also accepts "me" and "other", relative to the caller.
func ResolveRole(s string, caller Role) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "me", "myself", "i":
		return caller, nil
	case "other", "them", "co-parent", "coparent":
		return caller.Other(), nil
	}
	return ParseRole(strings.TrimSpace(s))
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleParentA {
		return RoleParentB
	}
	return RoleParentA
}

func (r Role) Valid() bool {
	return r == RoleParentA || r == RoleParentB
}

type Parent struct {
	Ref         ParentRef `json:"ref"`
	FamilyID    int64     `json:"family_id"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
	TelegramID  int64     `json:"telegram_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParentPair holds both resolved parents of a family.
type ParentPair struct {
	A Parent
	B Parent
}

var ErrIncompletePair = errors.New("both parents must be registered")

// NewParentPair picks Parent A and Parent B out of a family's members.
func NewParentPair(parents []Parent) (ParentPair, error) {
	var pair ParentPair
	for _, p := range parents {
		switch p.Role {
		case RoleParentA:
			pair.A = p
		case RoleParentB:
			pair.B = p
		}
	}
	if !pair.Complete() {
		return pair, ErrIncompletePair
	}
	return pair, nil
}

func (p ParentPair) Complete() bool {
	return p.A.Ref != "" && p.B.Ref != ""
}

func (p ParentPair) ByRole(r Role) Parent {
	if r == RoleParentB {
		return p.B
	}
	return p.A
}

func (p ParentPair) Other(r Role) Parent {
	if r == RoleParentB {
		return p.A
	}
	return p.B
}

type Family struct {
	ID        int64     `json:"family_id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	WeekStart string    `json:"week_start"`
	CreatedAt time.Time `json:"created_at"`
}

// Location resolves the family timezone, falling back to time.Local.
func (f *Family) Location() *time.Location {
	if f.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday maps the week_start setting to a weekday.
func (f *Family) FirstWeekday() time.Weekday {
	if f.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

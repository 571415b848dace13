package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidChild = errors.New("invalid child")

type SchoolInfo struct {
	SchoolName  string `json:"school_name,omitempty"`
	ClassName   string `json:"class_name,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
}

func (s SchoolInfo) IsZero() bool {
	return s.SchoolName == "" && s.ClassName == "" && s.TeacherName == ""
}

type MedicalInfo struct {
	Allergies   string `json:"allergies,omitempty"`
	Medications string `json:"medications,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
	DoctorPhone string `json:"doctor_phone,omitempty"`
}

func (m MedicalInfo) IsZero() bool {
	return m.Allergies == "" && m.Medications == "" && m.DoctorName == "" && m.DoctorPhone == ""
}

// Child is a child profile shared by both parents of a family.
type Child struct {
	ID         string      `json:"child_id"`
	FamilyID   int64       `json:"family_id"`
	Name       string      `json:"name"`
	BirthDate  Date        `json:"birth_date"`
	School     SchoolInfo  `json:"school"`
	Activities string      `json:"activities,omitempty"`
	Medical    MedicalInfo `json:"medical"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Validate trims the free-text fields and checks the required ones.
func (c *Child) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Activities = strings.TrimSpace(c.Activities)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidChild)
	}
	if c.BirthDate.IsZero() {
		return fmt.Errorf("%w: birth date is required", ErrInvalidChild)
	}
	return nil
}

// AgeOn returns the age in whole years on day, 0 before the birth date.
func (c *Child) AgeOn(day Date) int {
	b, d := c.BirthDate.Time(), day.Time()
	age := d.Year() - b.Year()
	if d.Month() < b.Month() || (d.Month() == b.Month() && d.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

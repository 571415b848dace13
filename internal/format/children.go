package format

import (
	"fmt"
	"strings"

	"github.com/hray3182/CoParent/internal/models"
)

// ChildCard renders one child profile. Empty sections are left out.
func ChildCard(c models.Child, today models.Date) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "`%s` **%s**, born %s (%d)\n", shortID(c.ID), c.Name, c.BirthDate, c.AgeOn(today))
	if !c.School.IsZero() {
		fmt.Fprintf(&sb, "  School: %s\n", joinNonEmpty(c.School.SchoolName, c.School.ClassName, c.School.TeacherName))
	}
	if c.Activities != "" {
		fmt.Fprintf(&sb, "  Activities: %s\n", c.Activities)
	}
	m := c.Medical
	if m.Allergies != "" {
		fmt.Fprintf(&sb, "  Allergies: %s\n", m.Allergies)
	}
	if m.Medications != "" {
		fmt.Fprintf(&sb, "  Medications: %s\n", m.Medications)
	}
	if m.DoctorName != "" || m.DoctorPhone != "" {
		fmt.Fprintf(&sb, "  Doctor: %s\n", joinNonEmpty(m.DoctorName, m.DoctorPhone))
	}
	return sb.String()
}

func ChildList(children []models.Child, today models.Date) string {
	var sb strings.Builder
	sb.WriteString("# Children\n")
	if len(children) == 0 {
		sb.WriteString("No children yet. Add one with /child add <YYYY-MM-DD> <name>.\n")
		return sb.String()
	}
	for _, c := range children {
		sb.WriteString(ChildCard(c, today))
	}
	return sb.String()
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

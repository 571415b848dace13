package custody

import "github.com/hray3182/CoParent/internal/models"

// Pattern names a repeating custody template.
type Pattern string

const (
	PatternAlternatingWeek Pattern = "alternating_week"
	PatternTwoTwoFiveFive  Pattern = "2255"
	PatternCustom          Pattern = "custom"
)

// Variant selects between the two layouts colloquially called 2-2-5-5.
type Variant string

const (
	// VariantFourSegment is 2 days, 2 days, 5 days, 5 days.
	VariantFourSegment Variant = "four_segment"
	// VariantWeeklySplit is two 7-day weeks split 2/2/3, the second week
	// mirrored: A A B B A A A | B B A A B B B.
	VariantWeeklySplit Variant = "weekly_split"
)

// cycleDays is the length of every supported cycle.
const cycleDays = 14

type holder int

const (
	first holder = iota
	second
)

type segment struct {
	days   int
	holder holder
}

var cycles = map[Pattern]map[Variant][]segment{
	PatternAlternatingWeek: {
		"": {{7, first}, {7, second}},
	},
	PatternTwoTwoFiveFive: {
		VariantFourSegment: {{2, first}, {2, second}, {5, first}, {5, second}},
		VariantWeeklySplit: {{2, first}, {2, second}, {3, first}, {2, second}, {2, first}, {3, second}},
	},
}

func cycleFor(p Pattern, v Variant) ([]segment, bool) {
	variants, ok := cycles[p]
	if !ok {
		return nil, false
	}
	if p != PatternTwoTwoFiveFive {
		v = ""
	} else if v == "" {
		v = VariantFourSegment
	}
	segs, ok := variants[v]
	return segs, ok
}

func (h holder) parent(pair models.ParentPair, starting models.Role) models.Parent {
	if h == first {
		return pair.ByRole(starting)
	}
	return pair.Other(starting)
}

// Describe returns a short human description of a pattern.
func Describe(p Pattern, v Variant) string {
	switch p {
	case PatternAlternatingWeek:
		return "alternating weeks"
	case PatternTwoTwoFiveFive:
		if v == VariantWeeklySplit {
			return "2-2-5-5 (2/2/3 weekly split)"
		}
		return "2-2-5-5 (2, 2, 5, 5 days)"
	case PatternCustom:
		return "custom (manual entry)"
	}
	return string(p)
}

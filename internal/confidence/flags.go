package confidence

// Flag is a machine-readable anomaly marker.
type Flag string

// Flags raised while scoring.
const (
	FlagUnusuallySmall        Flag = "unusually_small"
	FlagUnusuallyLarge        Flag = "unusually_large"
	FlagNoTasksDetected       Flag = "no_tasks_detected"
	FlagSingleTaskProject     Flag = "single_task_project"
	FlagManyTasks             Flag = "many_tasks"
	FlagMissingEssentialTasks Flag = "missing_essential_tasks"
	FlagSuspiciouslyLow       Flag = "suspiciously_low"
	FlagBelowAverage          Flag = "below_average"
	FlagAboveAverage          Flag = "above_average"
	FlagSuspiciouslyHigh      Flag = "suspiciously_high"
)

// Category groups flags by what they are about.
type Category string

// Flag categories.
const (
	CategorySize     Category = "size_issues"
	CategoryTask     Category = "task_issues"
	CategoryPrice    Category = "price_issues"
	CategoryLocation Category = "location_issues"
)

// Severity is the overall seriousness of a flag set.
type Severity string

// Severity levels.
const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var flagCategories = map[Flag]Category{
	FlagUnusuallySmall:        CategorySize,
	FlagUnusuallyLarge:        CategorySize,
	FlagNoTasksDetected:       CategoryTask,
	FlagSingleTaskProject:     CategoryTask,
	FlagManyTasks:             CategoryTask,
	FlagMissingEssentialTasks: CategoryTask,
	FlagSuspiciouslyLow:       CategoryPrice,
	FlagBelowAverage:          CategoryPrice,
	FlagAboveAverage:          CategoryPrice,
	FlagSuspiciouslyHigh:      CategoryPrice,
}

var flagSeverities = map[Flag]Severity{
	FlagSuspiciouslyLow:       SeverityHigh,
	FlagSuspiciouslyHigh:      SeverityHigh,
	FlagNoTasksDetected:       SeverityHigh,
	FlagUnusuallySmall:        SeverityMedium,
	FlagUnusuallyLarge:        SeverityMedium,
	FlagMissingEssentialTasks: SeverityMedium,
}

var flagSuggestions = map[Flag]string{
	FlagSuspiciouslyLow:       "Review material and labor costs - prices seem unusually low",
	FlagSuspiciouslyHigh:      "Review pricing calculations - prices seem unusually high",
	FlagBelowAverage:          "Price is below the historical average - confirm nothing is missing from the scope",
	FlagAboveAverage:          "Price is above the historical average - check for premium materials or extra work",
	FlagUnusuallySmall:        "Verify bathroom size - very small bathrooms may need special considerations",
	FlagUnusuallyLarge:        "Verify bathroom size - very large bathrooms may need different pricing model",
	FlagNoTasksDetected:       "No renovation tasks detected - ask the client to describe the work",
	FlagMissingEssentialTasks: "Consider adding essential renovation tasks for complete bathroom renovation",
	FlagSingleTaskProject:     "Single task projects may need different pricing approach",
	FlagManyTasks:             "Many tasks detected - verify all are necessary for this project",
}

// Summary describes a set of flags.
type Summary struct {
	Categories map[Category][]Flag
	Severity   Severity
	Flags      []Flag
	Total      int
}

// Summarize categorizes flags and grades their severity.
func Summarize(flags []Flag) Summary {
	s := Summary{
		Categories: map[Category][]Flag{
			CategorySize:     {},
			CategoryTask:     {},
			CategoryPrice:    {},
			CategoryLocation: {},
		},
		Flags:    append([]Flag(nil), flags...),
		Total:    len(flags),
		Severity: SeverityOf(flags),
	}
	for _, f := range flags {
		if c, ok := flagCategories[f]; ok {
			s.Categories[c] = append(s.Categories[c], f)
		}
	}
	return s
}

// SeverityOf grades a flag set: high if any high-severity flag fired, medium
// if any medium-severity flag fired, low for other flags, none when empty.
func SeverityOf(flags []Flag) Severity {
	if len(flags) == 0 {
		return SeverityNone
	}

	severity := SeverityLow
	for _, f := range flags {
		switch flagSeverities[f] {
		case SeverityHigh:
			return SeverityHigh
		case SeverityMedium:
			severity = SeverityMedium
		}
	}
	return severity
}

// Suggestions returns one remediation hint per flag, in flag order.
func Suggestions(flags []Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if msg, ok := flagSuggestions[f]; ok {
			out = append(out, msg)
			continue
		}
		out = append(out, "Review flagged estimate: "+string(f))
	}
	return out
}

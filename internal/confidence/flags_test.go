package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		name  string
		flags []Flag
		want  Severity
	}{
		{name: "none", want: SeverityNone},
		{name: "low", flags: []Flag{FlagSingleTaskProject, FlagAboveAverage}, want: SeverityLow},
		{name: "medium", flags: []Flag{FlagBelowAverage, FlagUnusuallyLarge}, want: SeverityMedium},
		{name: "high wins", flags: []Flag{FlagUnusuallySmall, FlagSuspiciouslyHigh}, want: SeverityHigh},
		{name: "no tasks", flags: []Flag{FlagNoTasksDetected}, want: SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityOf(tt.flags))
		})
	}
}

func TestSummarize(t *testing.T) {
	flags := []Flag{FlagUnusuallySmall, FlagSingleTaskProject, FlagSuspiciouslyLow}

	s := Summarize(flags)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, SeverityHigh, s.Severity)
	assert.Equal(t, []Flag{FlagUnusuallySmall}, s.Categories[CategorySize])
	assert.Equal(t, []Flag{FlagSingleTaskProject}, s.Categories[CategoryTask])
	assert.Equal(t, []Flag{FlagSuspiciouslyLow}, s.Categories[CategoryPrice])
	assert.Empty(t, s.Categories[CategoryLocation])
}

func TestSuggestions(t *testing.T) {
	all := []Flag{
		FlagUnusuallySmall, FlagUnusuallyLarge, FlagNoTasksDetected, FlagSingleTaskProject,
		FlagManyTasks, FlagMissingEssentialTasks, FlagSuspiciouslyLow, FlagBelowAverage,
		FlagAboveAverage, FlagSuspiciouslyHigh,
	}

	got := Suggestions(all)
	assert.Len(t, got, len(all))
	for _, s := range got {
		assert.NotContains(t, s, "Review flagged estimate")
	}

	assert.Empty(t, Suggestions(nil))
	assert.Equal(t, []string{"Review flagged estimate: odd"}, Suggestions([]Flag{"odd"}))
}

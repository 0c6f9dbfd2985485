package feed

import "strings"

// assessmentKeywords marks events that represent gradable deliverables.
var assessmentKeywords = []string{
	"assignment", "exam", "test", "quiz", "project", "due",
	"homework", "assessment", "submission", "midterm", "final",
	"essay", "paper", "presentation", "report",
}

// IsAssessment reports whether an event looks like a gradable deliverable,
// by case-insensitive substring match over its title and description.
func IsAssessment(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	for _, keyword := range assessmentKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

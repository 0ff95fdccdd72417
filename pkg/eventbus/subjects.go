package eventbus

import (
	"fmt"
	"strings"
)

// SubjectPrefix is the canonical prefix for decision telemetry events.
const SubjectPrefix = "nova.v1.decision"

// DecisionSubject returns the subject for one user's decision events.
func DecisionSubject(userID string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, sanitizeSegment(userID))
}

// DecisionWildcard matches decision events for all users.
func DecisionWildcard() string {
	return SubjectPrefix + ".>"
}

func sanitizeSegment(value string) string {
	if value == "" {
		return "unknown"
	}
	// dots would split the id across subject segments
	return strings.ReplaceAll(value, ".", "_")
}

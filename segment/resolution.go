package segment

import "strings"

// resolutionPhrases are signals that a conversational thread has concluded.
// Matching is case-insensitive substring containment.
var resolutionPhrases = []string{
	"thanks", "thank you", "thx", "ty",
	"solved", "resolved", "fixed", "working now",
	"got it", "that worked", "perfect", "awesome",
	"appreciate it", "makes sense", "understood",
	"all set", "good to go", "sorted",
	"closing this", "issue resolved", "problem solved",
}

// containsResolution reports whether text contains a resolution phrase.
func containsResolution(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range resolutionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

package logbook

import "regexp"

// deleteLatestRe matches correction phrasings like "delete my latest
// exercise" or "remove last exercise". Corrections are detected before any
// model call; they never mutate previously parsed objects.
var deleteLatestRe = regexp.MustCompile(`(?i)^\s*(please\s+)?(delete|remove|undo)\s+(my\s+)?(last|latest)\s+(exercise|lift)\b`)

// IsDeleteLatest reports whether the utterance is a delete-latest-exercise
// command rather than a workout description.
func IsDeleteLatest(utterance string) bool {
	return deleteLatestRe.MatchString(utterance)
}

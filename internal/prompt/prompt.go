// Package prompt builds the instruction string sent to the language model.
// Building is a pure function of the utterance and a reference date; the
// package never calls the model itself.
package prompt

import (
	"fmt"
	"time"
)

const template = `Today's date is %s.
Convert the workout description below into structured JSON.

REQUIREMENTS:
1. ALWAYS return {"entries": [...]} - never a bare array. One entry per calendar date mentioned; split descriptions spanning multiple dates into separate entries.
2. Resolve relative dates ("yesterday", "last week") against today's date and emit them as YYYY-MM-DD.
3. Convert all time values to seconds (e.g. "45:18" becomes 2718, "5 minutes" becomes 300).
4. Use canonical exercise names with hyphenated compounds ("pull-ups", "push-ups").
5. Repeated mentions of the same exercise are successive sets with increasing set_number, never merged into one count.
6. Weight in kg, distance in km, reps with unit "reps". Use "rounds" for round-based workouts.
7. Omit metrics you cannot determine; do not invent values.
8. Return ONLY the JSON, no explanation.

INPUT: "%s"

OUTPUT FORMAT:
{
  "entries": [
    {
      "date": "YYYY-MM-DD",
      "raw_input": "relevant portion of the input",
      "exercises": [
        {
          "name": "exercise name",
          "activity_type": "exercise",
          "notes": "any notes or null",
          "sets": [
            {
              "set_number": 1,
              "metrics": [
                {"type": "reps", "value": 10, "unit": "reps"},
                {"type": "weight", "value": 50, "unit": "kg"},
                {"type": "time", "value": 300, "unit": "sec"},
                {"type": "distance", "value": 5, "unit": "km"}
              ]
            }
          ]
        }
      ]
    }
  ]
}`

// Build formats the extraction prompt for a user utterance. refDate is the
// date relative phrasings like "yesterday" resolve against; callers pass
// time.Now() so it is computed per request, not baked in.
func Build(utterance string, refDate time.Time) string {
	return fmt.Sprintf(template, refDate.Format("2006-01-02"), utterance)
}

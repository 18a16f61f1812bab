package parse

// ParsedLog is the top-level structure the model is asked to return.
// One utterance may yield several entries, e.g. when it describes
// workouts on two different days, so the wrapper is always an object
// with an entries array, never a bare list.
type ParsedLog struct {
	Entries []Entry `json:"entries"`
}

// Entry is one logical workout record: one date, one or more exercises.
type Entry struct {
	Date      string     `json:"date"`
	UserID    string     `json:"user_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	RawInput  string     `json:"raw_input,omitempty"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is a named exercise with its sets, in mention order.
type Exercise struct {
	Name         string `json:"name"`
	ActivityType string `json:"activity_type,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Sets         []Set  `json:"sets"`
}

// Set is a single set within an exercise. Set numbers are 1-based and
// strictly increasing per exercise.
type Set struct {
	SetNumber int      `json:"set_number"`
	Metrics   []Metric `json:"metrics"`
}

// Metric is a (type, value, unit) triple. Value is a pointer because the
// model emits null for metrics it could not determine; the mapper drops
// those rather than persisting placeholders.
type Metric struct {
	Type  string   `json:"type"`
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

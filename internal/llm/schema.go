package llm

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v2"

	"github.com/meltforce/replog/internal/parse"
)

// generateSchema reflects a JSON schema for T with the settings structured
// output requires: no references, no additional properties.
func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var workoutLogSchema = generateSchema[parse.ParsedLog]()

var workoutLogSchemaParam = openai.ResponseFormatJSONSchemaJSONSchemaParam{
	Name:        "workout_log",
	Description: openai.String("Workout entries extracted from the user's free-text description"),
	Schema:      workoutLogSchema,
	Strict:      openai.Bool(true),
}

package generate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// matchAnalysisSchema validates the LLM's match-analysis output before it
// steers the resume rewrite. Malformed output is discarded, not repaired.
const matchAnalysisSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["matching_skills", "missing_skills", "experience_summary", "keywords"],
  "properties": {
    "matching_skills": {
      "type": "array",
      "items": {"type": "string"}
    },
    "missing_skills": {
      "type": "array",
      "items": {"type": "string"}
    },
    "experience_summary": {
      "type": "string"
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "additionalProperties": true
}`

var matchAnalysisLoader = gojsonschema.NewStringLoader(matchAnalysisSchema)

// validateMatchAnalysis checks raw JSON against the match-analysis schema
func validateMatchAnalysis(raw string) error {
	result, err := gojsonschema.Validate(matchAnalysisLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		first := ""
		if errs := result.Errors(); len(errs) > 0 {
			first = errs[0].String()
		}
		return fmt.Errorf("match analysis does not conform to schema: %s", first)
	}
	return nil
}

// Package mode holds the launch configuration record and its one-line
// pipe-delimited encoding:
//
//	model_path|prompt_path|temp=0.8|top_k=40|...|name|description
package mode

import (
	"fmt"
	"strings"
)

// Record is one saved or ad-hoc launch configuration. ModelPath and
// PromptPath are always absolute.
type Record struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	ModelPath   string     `json:"model_path" yaml:"model_path"`
	PromptPath  string     `json:"prompt_path" yaml:"prompt_path"`
	Parameters  Parameters `json:"parameters" yaml:"parameters"`
}

// Bases are the directories relative stored paths are resolved against.
type Bases struct {
	// Home resolves relative model paths.
	Home string
	// PromptsDir resolves relative prompt paths.
	PromptsDir string
	// BlankPrompt is used when an entry carries no prompt segment.
	BlankPrompt string
}

// Delimiter separates segments of an encoded record.
const Delimiter = "|"

type invalidFieldError struct {
	field string
	value string
	why   string
}

func (e invalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.field, e.value, e.why)
}

// IsInvalidField reports whether err rejects a field value that the
// encoding cannot represent.
func IsInvalidField(err error) bool {
	_, ok := err.(invalidFieldError)
	return ok
}

// ValidateField rejects values the one-line encoding cannot carry: the
// segment delimiter, double quotes and line breaks.
func ValidateField(field, value string) error {
	switch {
	case strings.Contains(value, Delimiter):
		return invalidFieldError{field: field, value: value, why: "must not contain '|'"}
	case strings.Contains(value, `"`):
		return invalidFieldError{field: field, value: value, why: "must not contain '\"'"}
	case strings.ContainsAny(value, "\r\n"):
		return invalidFieldError{field: field, value: value, why: "must be a single line"}
	}
	return nil
}

// Validate checks every field of r against the encoding rules.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ModelPath) == "" {
		return invalidFieldError{field: "model_path", value: r.ModelPath, why: "is required"}
	}
	if err := ValidateField("model_path", r.ModelPath); err != nil {
		return err
	}
	if strings.TrimSpace(r.PromptPath) == "" {
		return invalidFieldError{field: "prompt_path", value: r.PromptPath, why: "is required"}
	}
	if err := ValidateField("prompt_path", r.PromptPath); err != nil {
		return err
	}
	if strings.Contains(r.PromptPath, "=") {
		return invalidFieldError{field: "prompt_path", value: r.PromptPath, why: "must not contain '='"}
	}
	if err := ValidateField("name", r.Name); err != nil {
		return err
	}
	if strings.Contains(r.Name, "=") {
		return invalidFieldError{field: "name", value: r.Name, why: "must not contain '='"}
	}
	if err := ValidateField("description", r.Description); err != nil {
		return err
	}
	if strings.Contains(r.Description, "=") {
		return invalidFieldError{field: "description", value: r.Description, why: "must not contain '='"}
	}
	return nil
}

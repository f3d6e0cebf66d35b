package model

import "fmt"

// ValidationError indicates the input table is unusable: required columns
// missing, numeric fields that do not parse, or an empty table. The run
// aborts and no artifact is written.
type ValidationError struct {
	Dataset string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input %s: %s", e.Dataset, e.Reason)
}

// ConfigurationError indicates the weight/threshold structure cannot drive a
// run. Detected before any row is scored.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

package dto

type PatternTestRequest struct {
	Pattern   string `json:"regexPattern"`
	SampleSms string `json:"sampleSms"`
}

// PatternTestResult is never persisted. ExtractedFields is only set when Matched.
type PatternTestResult struct {
	Matched         bool              `json:"matched"`
	ExtractedFields map[string]string `json:"extractedFields,omitempty"`
	ErrorMessage    string            `json:"errorMessage,omitempty"`
	ExecutionTimeMs int64             `json:"executionTimeMs"`
}

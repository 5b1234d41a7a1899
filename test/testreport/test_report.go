package testreport

import (
	"bytes"
	"encoding/json"
)

// Status ...
type Status string

// Test case statuses the report can carry.
const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Placeholder values for fields a JUnit document does not describe.
const (
	DefaultTag     = "ExampleTag"
	DefaultType    = "e2e"
	DefaultBrowser = "Unknown"
)

// TestReport is the normalized report structure consumed by the dashboards.
type TestReport struct {
	Results Results `json:"results"`
}

// Results ...
type Results struct {
	Tool    Tool    `json:"tool"`
	Summary Summary `json:"summary"`
	Tests   []Test  `json:"tests"`
}

// Tool identifies the producer of the report.
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Summary holds suite level statistics.
// Start and Stop are Unix milliseconds, Duration is milliseconds.
type Summary struct {
	Tests    int   `json:"tests"`
	Passed   int   `json:"passed"`
	Failed   int   `json:"failed"`
	Pending  int   `json:"pending"`
	Skipped  int   `json:"skipped"`
	Other    int   `json:"other"`
	Suites   int   `json:"suites"`
	Start    int64 `json:"start"`
	Stop     int64 `json:"stop"`
	Duration int64 `json:"duration"`
}

// Test is a single test case record.
type Test struct {
	Name       string                 `json:"name"`
	Status     Status                 `json:"status"`
	Duration   int64                  `json:"duration"`
	Start      int64                  `json:"start"`
	Stop       int64                  `json:"stop"`
	Suite      string                 `json:"suite"`
	RawStatus  string                 `json:"rawStatus"`
	Tags       []string               `json:"tags"`
	Type       string                 `json:"type"`
	FilePath   string                 `json:"filePath"`
	Retries    int                    `json:"retries"`
	Flaky      bool                   `json:"flaky"`
	Browser    string                 `json:"browser"`
	Extra      map[string]interface{} `json:"extra"`
	Message    *string                `json:"message"`
	Trace      *string                `json:"trace"`
	Screenshot *string                `json:"screenshot"`
}

// Marshal returns the indented JSON encoding of the report.
func Marshal(report TestReport) ([]byte, error) {
	if report.Results.Tests == nil {
		report.Results.Tests = []Test{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(report); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

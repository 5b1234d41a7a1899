package test

import (
	"io"
	"strconv"

	"github.com/bitrise-steplib/steps-junit-to-json/test/testreport"
	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
)

// Result is the outcome of converting a single JUnit XML report.
type Result struct {
	Name       string
	InputPath  string
	OutputPath string
	Profile    string
	Summary    testreport.Summary
	Err        error
}

// Results ...
type Results []Result

// Succeeded returns the results with a written JSON report.
func (results Results) Succeeded() Results {
	var succeeded Results
	for _, result := range results {
		if result.Err == nil {
			succeeded = append(succeeded, result)
		}
	}
	return succeeded
}

// Failed ...
func (results Results) Failed() Results {
	var failed Results
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// OutputPaths lists the written JSON reports.
func (results Results) OutputPaths() []string {
	var paths []string
	for _, result := range results.Succeeded() {
		paths = append(paths, result.OutputPath)
	}
	return paths
}

// Err aggregates the conversion errors, nil if every report was converted.
func (results Results) Err() error {
	var errs *multierror.Error
	for _, result := range results.Failed() {
		errs = multierror.Append(errs, result.Err)
	}
	return errs.ErrorOrNil()
}

// PrintSummary writes a table of the processed reports.
func (results Results) PrintSummary(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Report", "Profile", "Tests", "Passed", "Failed", "Skipped", "Duration (ms)", "Status"})

	for _, result := range results {
		status := "converted"
		if result.Err != nil {
			status = "failed"
		}

		table.Append([]string{
			result.Name,
			result.Profile,
			strconv.Itoa(result.Summary.Tests),
			strconv.Itoa(result.Summary.Passed),
			strconv.Itoa(result.Summary.Failed),
			strconv.Itoa(result.Summary.Skipped),
			strconv.FormatInt(result.Summary.Duration, 10),
			status,
		})
	}

	table.SetFooter([]string{"", "", "", "", "", "", "Converted", strconv.Itoa(len(results.Succeeded())) + "/" + strconv.Itoa(len(results))})
	table.Render()
}

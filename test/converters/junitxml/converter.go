package junitxml

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-junit-to-json/test/junit"
	"github.com/bitrise-steplib/steps-junit-to-json/test/testreport"
	"github.com/pkg/errors"
)

// MessageExtraction selects how a failure message is derived from a failure element.
type MessageExtraction int

const (
	// BasicMessage uses the message attribute only.
	BasicMessage MessageExtraction = iota
	// InstrumentMessage falls back to the failure text and keeps the first line.
	InstrumentMessage
)

// Profile describes one flavour of JUnit report conversion.
type Profile struct {
	Name    string
	Message MessageExtraction
	// SuiteTimestamp makes the suite timestamp attribute the report start time.
	// Without it every report starts at 0.
	SuiteTimestamp bool
}

const (
	assertionFailedPrefix = "junit.framework.AssertionFailedError:"
	passedMessage         = "Test passed"
	noMessageProvided     = "No message provided"
	noTraceAvailable      = "No trace available"
	truncatedMarker       = "... (truncated)"
	maxTraceLines         = 5

	defaultTestName  = "Unnamed Test"
	defaultSuiteName = "Unknown Suite"
)

// IsReportFile reports whether the file name looks like a JUnit XML report.
func IsReportFile(name string) bool {
	return strings.HasSuffix(name, ".xml")
}

// Converter turns a JUnit XML document into a testreport.TestReport.
type Converter struct {
	profile Profile
	tool    testreport.Tool
	logger  log.Logger
}

// NewConverter ...
func NewConverter(profile Profile, tool testreport.Tool, logger log.Logger) *Converter {
	return &Converter{
		profile: profile,
		tool:    tool,
		logger:  logger,
	}
}

// Profile ...
func (c *Converter) Profile() Profile {
	return c.profile
}

// ConvertFile parses the XML report at pth and converts it.
func (c *Converter) ConvertFile(pth string) (testreport.TestReport, error) {
	root, err := junit.ParseFile(pth)
	if err != nil {
		return testreport.TestReport{}, err
	}
	c.logger.Debugf("Retrieved tree")

	return c.Convert(root)
}

// Convert builds the report from the first test suite of the document.
func (c *Converter) Convert(root junit.Element) (testreport.TestReport, error) {
	suite, err := junit.FindTestSuite(root, c.logger)
	if err != nil {
		return testreport.TestReport{}, err
	}

	start := c.startTimestamp(suite)
	suiteTime, err := secondsAttr(suite, "time")
	if err != nil {
		return testreport.TestReport{}, err
	}
	c.logger.Debugf("Retrieved times")

	total, err := intAttr(suite, "tests")
	if err != nil {
		return testreport.TestReport{}, err
	}
	skipped, err := intAttr(suite, "skipped")
	if err != nil {
		return testreport.TestReport{}, err
	}
	failed, err := intAttr(suite, "failures")
	if err != nil {
		return testreport.TestReport{}, err
	}
	c.logger.Debugf("Retrieved test amounts")

	var totalDuration int64
	testCases := suite.FindAll("testcase")
	tests := make([]testreport.Test, 0, len(testCases))
	for _, testCase := range testCases {
		test, err := c.convertTestCase(testCase, start)
		if err != nil {
			return testreport.TestReport{}, err
		}

		totalDuration += test.Duration
		tests = append(tests, test)
	}

	c.logger.Debugf("Suite time attribute: %dms, sum of test case durations: %dms", millis(suiteTime), totalDuration)

	return testreport.TestReport{
		Results: testreport.Results{
			Tool: c.tool,
			Summary: testreport.Summary{
				Tests:    total,
				Passed:   total - skipped - failed,
				Failed:   failed,
				Skipped:  skipped,
				Suites:   1,
				Start:    start,
				Stop:     start + totalDuration,
				Duration: totalDuration,
			},
			Tests: tests,
		},
	}, nil
}

func (c *Converter) startTimestamp(suite junit.Element) int64 {
	value, ok := suite.Attr("timestamp")
	if !c.profile.SuiteTimestamp {
		if ok {
			c.logger.Debugf("Ignoring suite timestamp (%s) for %s reports", value, c.profile.Name)
		}
		return 0
	}
	if !ok {
		return absentTimestamp
	}

	timestamp, err := parseTimestamp(value)
	if err != nil {
		c.logger.Warnf("Error parsing datetime '%s': %s", value, err)
		return 0
	}
	return timestamp.UnixMilli()
}

func (c *Converter) convertTestCase(testCase junit.Element, start int64) (testreport.Test, error) {
	name := testCase.AttrOr("name", defaultTestName)
	suite := testCase.AttrOr("classname", defaultSuiteName)

	seconds, err := secondsAttr(testCase, "time")
	if err != nil {
		return testreport.Test{}, errors.Wrapf(err, "test case %s", name)
	}
	duration := millis(seconds)

	status := testreport.StatusPassed
	message := passedMessage
	var trace *string
	if failure, ok := testCase.Find("failure"); ok {
		status = testreport.StatusFailed
		message = c.failureMessage(failure)
		failureTrace := traceOf(failure)
		trace = &failureTrace
	}

	return testreport.Test{
		Name:      name,
		Status:    status,
		Duration:  duration,
		Start:     start,
		Stop:      start + duration,
		Suite:     suite,
		RawStatus: string(status),
		Tags:      []string{testreport.DefaultTag},
		Type:      testreport.DefaultType,
		FilePath:  fmt.Sprintf("/tests/%s/%s.test.js", strings.ReplaceAll(suite, ".", "/"), name),
		Browser:   testreport.DefaultBrowser,
		Extra:     map[string]interface{}{},
		Message:   &message,
		Trace:     trace,
	}, nil
}

func (c *Converter) failureMessage(failure junit.Element) string {
	message, ok := failure.Attr("message")
	switch c.profile.Message {
	case InstrumentMessage:
		if message == "" {
			message = failure.Text()
			if strings.TrimSpace(message) == "" {
				message = noMessageProvided
			}
		}
		return firstLine(stripAssertionPrefix(message))
	default:
		if !ok {
			message = noMessageProvided
		}
		return stripAssertionPrefix(message)
	}
}

func stripAssertionPrefix(message string) string {
	return strings.TrimSpace(strings.TrimPrefix(message, assertionFailedPrefix))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(normalizeNewlines(s), "\n")
	return line
}

func traceOf(failure junit.Element) string {
	trace := strings.TrimFunc(failure.Text(), isTraceSpace)
	if trace == "" {
		return noTraceAvailable
	}

	lines := strings.Split(traceLineBreaks.Replace(trace), "\n")
	if len(lines) <= maxTraceLines {
		return trace
	}

	kept := append(lines[:maxTraceLines:maxTraceLines], truncatedMarker)
	return strings.Join(kept, "\n")
}

func normalizeNewlines(s string) string {
	return strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
}

// traceLineBreaks maps every line boundary a stack trace may carry to "\n":
// vertical tab, form feed, the file/group/record separators, NEL and the
// Unicode line and paragraph separators count as well.
var traceLineBreaks = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\v", "\n",
	"\f", "\n",
	"\x1c", "\n",
	"\x1d", "\n",
	"\x1e", "\n",
	"\u0085", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
)

// isTraceSpace also trims the information separators around a trace.
func isTraceSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

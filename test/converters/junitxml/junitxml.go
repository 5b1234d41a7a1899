package junitxml

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bitrise-steplib/steps-junit-to-json/test/junit"
	"github.com/pkg/errors"
)

// absentTimestamp is the start of suites without a timestamp attribute:
// 0001-01-01T00:00:00Z in Unix milliseconds.
var absentTimestamp = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

// timestampLayouts are tried in order. A literal Z is accepted for the zone
// offset. The zone-less ISO 8601 layout is the one Gradle writes and is read as UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// intAttr reads an integer attribute, absent attributes count as 0.
func intAttr(element junit.Element, name string) (int, error) {
	value, ok := element.Attr(name)
	if !ok {
		return 0, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid '%s' attribute on %s", name, element.Tag())
	}
	return n, nil
}

// secondsAttr reads a duration attribute given in seconds, absent attributes count as 0.
func secondsAttr(element junit.Element, name string) (float64, error) {
	value, ok := element.Attr(name)
	if !ok {
		return 0, nil
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid '%s' attribute on %s", name, element.Tag())
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, errors.Errorf("invalid '%s' attribute on %s: %s is not a finite number", name, element.Tag(), value)
	}
	return seconds, nil
}

// millis converts seconds to milliseconds, dropping the fractional part.
func millis(seconds float64) int64 {
	return int64(seconds * 1000)
}

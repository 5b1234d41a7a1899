// Package converters contains the named conversion profiles.
// Every profile runs the same JUnit XML converter, they only differ in how the
// failure message and the start time are derived.
package converters

import (
	"fmt"
	"strings"

	"github.com/bitrise-steplib/steps-junit-to-json/test/converters/junitxml"
)

// Profile names accepted on the command line and in the step inputs.
const (
	Generic    = "generic"
	Unit       = "unit"
	Instrument = "instrument"
)

var profiles = []junitxml.Profile{
	{Name: Generic, Message: junitxml.BasicMessage, SuiteTimestamp: true},
	{Name: Unit, Message: junitxml.BasicMessage},
	{Name: Instrument, Message: junitxml.InstrumentMessage},
}

// List lists all supported profiles
func List() []junitxml.Profile {
	return profiles
}

// Names ...
func Names() []string {
	var names []string
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names
}

// ByName returns the profile registered under name.
func ByName(name string) (junitxml.Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return junitxml.Profile{}, fmt.Errorf("unknown profile: %s, available profiles: %s", name, strings.Join(Names(), ", "))
}

package converters

import (
	"testing"

	"github.com/bitrise-steplib/steps-junit-to-json/test/converters/junitxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    junitxml.Profile
		wantErr bool
	}{
		{name: "generic", want: junitxml.Profile{Name: "generic", Message: junitxml.BasicMessage, SuiteTimestamp: true}},
		{name: "unit", want: junitxml.Profile{Name: "unit", Message: junitxml.BasicMessage}},
		{name: "instrument", want: junitxml.Profile{Name: "instrument", Message: junitxml.InstrumentMessage}},
		{name: "Instrument", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ByName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "generic, unit, instrument")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{Generic, Unit, Instrument}, Names())
	assert.Len(t, List(), 3)
}

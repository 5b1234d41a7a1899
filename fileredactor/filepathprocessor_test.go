package fileredactor

import (
	"reflect"
	"testing"

	"github.com/bitrise-steplib/steps-junit-to-json/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func Test_ProcessFilePaths(t *testing.T) {
	workDirPath := "/some/absolute/path/work_dir"
	tests := []struct {
		name      string
		input     string
		output    []string
		outputErr string
		envs      map[string]string
	}{
		{
			name:      "Empty input",
			input:     "    ",
			output:    nil,
			outputErr: "",
			envs:      nil,
		},
		{
			name:  "Expand env var",
			input: "$ABCD",
			output: []string{
				"/some/absolute/path/work_dir/TEST-UnitTests.xml",
			},
			outputErr: "",
			envs: map[string]string{
				"ABCD": "TEST-UnitTests.xml",
			},
		},
		{
			name: "Missing env var",
			input: `
   $ABCD
`,
			output:    nil,
			outputErr: "invalid item ($ABCD): environment variable isn't set",
			envs:      nil,
		},
		{
			name: "Relative and absolute paths",
			input: `
/some/absolute/path/to/results.xml
report_in_work_dir.xml
`,
			output: []string{
				"/some/absolute/path/to/results.xml",
				"/some/absolute/path/work_dir/report_in_work_dir.xml",
			},
			outputErr: "",
			envs: map[string]string{
				"ABCD": "TEST-UnitTests.xml",
			},
		},
		{
			name:      "Directory",
			input:     "app/build/test-results",
			output:    nil,
			outputErr: "path (/some/absolute/path/work_dir/app/build/test-results) is a directory, please make sure to only provide file paths",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepository := new(mocks.Repository)
			for key, val := range tt.envs {
				mockRepository.On("Get", key).Return(val)
			}
			mockRepository.On("Get", mock.Anything).Return("")

			mockModifier := new(mocks.PathModifier)
			mockModifier.On("AbsPath", "TEST-UnitTests.xml").Return(workDirPath+"/TEST-UnitTests.xml", nil)
			mockModifier.On("AbsPath", "/some/absolute/path/to/results.xml").Return("/some/absolute/path/to/results.xml", nil)
			mockModifier.On("AbsPath", "report_in_work_dir.xml").Return(workDirPath+"/report_in_work_dir.xml", nil)
			mockModifier.On("AbsPath", "app/build/test-results").Return(workDirPath+"/app/build/test-results", nil)

			mockChecker := new(mocks.PathChecker)
			mockChecker.On("IsDirExists", workDirPath+"/app/build/test-results").Return(true, nil)
			mockChecker.On("IsDirExists", mock.Anything).Return(false, nil)

			pathProcessor := NewFilePathProcessor(mockRepository, mockModifier, mockChecker)
			result, err := pathProcessor.ProcessFilePaths(tt.input)

			if err != nil && tt.outputErr != "" {
				assert.EqualError(t, err, tt.outputErr)
			} else if err != nil {
				t.Errorf("%s got = %v, want %v", t.Name(), err, tt.outputErr)
			} else if tt.outputErr != "" {
				t.Errorf("%s got no error, want %v", t.Name(), tt.outputErr)
			}

			if !reflect.DeepEqual(result, tt.output) {
				t.Errorf("%s got = %v, want %v", t.Name(), result, tt.output)
			}
		})
	}
}

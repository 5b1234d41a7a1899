package test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/pathutil"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	pathutilV2 "github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-junit-to-json/test/converters/junitxml"
	"github.com/bitrise-steplib/steps-junit-to-json/test/testreport"
	"github.com/docker/go-units"
)

const outputExt = ".json"

// Input is a directory of JUnit XML reports and the profile its reports are converted with.
type Input struct {
	Dir     string
	Profile junitxml.Profile
}

// Converter writes the JSON report of JUnit XML files.
type Converter struct {
	tool        testreport.Tool
	fileManager fileutil.FileManager
	pathChecker pathutilV2.PathChecker
	logger      log.Logger
}

// NewConverter ...
func NewConverter(tool testreport.Tool, fileManager fileutil.FileManager, pathChecker pathutilV2.PathChecker, logger log.Logger) Converter {
	return Converter{
		tool:        tool,
		fileManager: fileManager,
		pathChecker: pathChecker,
		logger:      logger,
	}
}

// ConvertFile converts the report at xmlPath and writes the result to outputPath.
// Nothing is written if the report can not be converted.
func (c Converter) ConvertFile(xmlPath, outputPath string, profile junitxml.Profile) Result {
	result := Result{
		Name:       filepath.Base(xmlPath),
		InputPath:  xmlPath,
		OutputPath: outputPath,
		Profile:    profile.Name,
	}

	report, err := junitxml.NewConverter(profile, c.tool, c.logger).ConvertFile(xmlPath)
	if err != nil {
		result.Err = fmt.Errorf("failed to convert %s: %w", xmlPath, err)
		return result
	}
	result.Summary = report.Results.Summary

	data, err := testreport.Marshal(report)
	if err != nil {
		result.Err = fmt.Errorf("failed to marshal report of %s: %w", xmlPath, err)
		return result
	}

	if err := pathutil.EnsureDirExist(filepath.Dir(outputPath)); err != nil {
		result.Err = fmt.Errorf("failed to create output directory: %w", err)
		return result
	}

	if err := c.fileManager.WriteBytes(outputPath, data); err != nil {
		result.Err = fmt.Errorf("failed to write %s: %w", outputPath, err)
		return result
	}

	c.logger.Donef("Converted %s to %s (%s)", xmlPath, outputPath, units.HumanSize(float64(len(data))))

	return result
}

/*
ConvertDirs converts every JUnit XML report found directly in the input directories.

	outputDir
	├── TEST-my.sudoku.game.UnitTests.json           <- unit_test_dir/TEST-my.sudoku.game.UnitTests.xml
	└── TEST-Pixel_6_API_33(AVD) - 13-_app-.json     <- instrument_test_dir/TEST-Pixel_6_API_33(AVD) - 13-_app-.xml

Missing input directories are skipped, a failing report does not stop the others.
*/
func (c Converter) ConvertDirs(inputs []Input, outputDir string) Results {
	var results Results

	for _, input := range inputs {
		c.logger.Println()
		c.logger.Infof("Processing %s test results in %s", input.Profile.Name, input.Dir)

		isDir, err := c.pathChecker.IsDirExists(input.Dir)
		if err != nil {
			c.logger.Warnf("Failed to check if %s is a directory: %s", input.Dir, err)
			continue
		}
		if !isDir {
			c.logger.Warnf("Directory not found: %s", input.Dir)
			continue
		}

		entries, err := os.ReadDir(input.Dir)
		if err != nil {
			c.logger.Warnf("Failed to list %s: %s", input.Dir, err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !junitxml.IsReportFile(entry.Name()) {
				c.logger.Printf("Skipping %s: not an XML report", entry.Name())
				continue
			}

			xmlPath := filepath.Join(input.Dir, entry.Name())
			outputPath := filepath.Join(outputDir, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))+outputExt)

			c.logger.Printf("Converting %s", xmlPath)
			result := c.ConvertFile(xmlPath, outputPath, input.Profile)
			if result.Err != nil {
				c.logger.Errorf("Failed to process %s: %s", entry.Name(), result.Err)
			}
			results = append(results, result)
		}
	}

	return results
}

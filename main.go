package main

import (
	"fmt"
	"os"

	"github.com/bitrise-io/go-steputils/tools"
	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-junit-to-json/fileredactor"
	"github.com/bitrise-steplib/steps-junit-to-json/report"
	"github.com/bitrise-steplib/steps-junit-to-json/test"
	"github.com/bitrise-steplib/steps-junit-to-json/test/converters"
	"github.com/spf13/cobra"
)

const (
	reportPathEnvKey = "JUNIT_JSON_REPORT_PATH"
	reportDirEnvKey  = "JUNIT_JSON_REPORT_DIR"

	uploadConcurrency = 4
)

func fail(logger log.Logger, format string, v ...interface{}) {
	logger.Errorf(format, v...)
	os.Exit(1)
}

func main() {
	logger := log.NewLogger()
	a := newApp(env.NewRepository(), logger)

	config, err := parseConfig(a.repository)
	if err != nil {
		fail(logger, "Issue with input: %s", err)
	}

	if err := a.rootCommand(&config).Execute(); err != nil {
		fail(logger, "%s", err)
	}
}

type app struct {
	logger       log.Logger
	repository   env.Repository
	fileManager  fileutil.FileManager
	pathChecker  pathutil.PathChecker
	pathModifier pathutil.PathModifier
	exportEnv    func(key, value string) error
}

func newApp(repository env.Repository, logger log.Logger) app {
	return app{
		logger:       logger,
		repository:   repository,
		fileManager:  fileutil.NewFileManager(),
		pathChecker:  pathutil.NewPathChecker(),
		pathModifier: pathutil.NewPathModifier(),
		exportEnv:    tools.ExportEnvironmentWithEnvman,
	}
}

func (a app) rootCommand(config *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "junit-to-json",
		Short:         "Convert JUnit XML test reports to JSON test reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger.EnableDebugLog(config.DebugMode)
			stepconf.Print(*config)
			a.logger.Println()
		},
	}

	root.PersistentFlags().StringVar(&config.ToolName, "tool-name", config.ToolName, "tool name written to the reports")
	root.PersistentFlags().StringVar(&config.ToolVersion, "tool-version", config.ToolVersion, "tool version written to the reports")
	root.PersistentFlags().BoolVar(&config.Strict, "strict", config.Strict, "exit with an error if a report can not be converted")
	root.PersistentFlags().BoolVar(&config.DebugMode, "debug", config.DebugMode, "enable debug logs")

	convert := &cobra.Command{
		Use:   "convert <xml_file>",
		Short: "Convert a single JUnit XML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convert(*config, args[0])
		},
	}
	convert.Flags().StringVarP(&config.OutputPath, "output", "o", config.OutputPath, "path of the JSON report")
	convert.Flags().StringVarP(&config.Profile, "profile", "p", config.Profile, fmt.Sprintf("conversion profile %v", converters.Names()))

	batch := &cobra.Command{
		Use:   "batch <unit_test_dir> <instrument_test_dir>",
		Short: "Convert every JUnit XML report of the unit and instrument test result directories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.batch(*config, args[0], args[1])
		},
	}
	batch.Flags().StringVarP(&config.OutputDir, "output-dir", "o", config.OutputDir, "directory of the JSON reports")

	root.AddCommand(convert, batch)

	return root
}

func (a app) converter(config Config) test.Converter {
	return test.NewConverter(config.tool(), a.fileManager, a.pathChecker, a.logger)
}

func (a app) convert(config Config, xmlArg string) error {
	profile, err := converters.ByName(config.Profile)
	if err != nil {
		return err
	}

	paths, err := fileredactor.NewFilePathProcessor(a.repository, a.pathModifier, a.pathChecker).ProcessFilePaths(xmlArg)
	if err != nil {
		return err
	}
	if len(paths) != 1 {
		return fmt.Errorf("exactly one XML file expected, got: %q", xmlArg)
	}
	xmlPath := paths[0]

	exists, err := a.pathChecker.IsPathExists(xmlPath)
	if err != nil {
		return fmt.Errorf("failed to check if %s exists: %w", xmlPath, err)
	}
	if !exists {
		return fmt.Errorf("file not found: %s", xmlPath)
	}

	outputPath, err := a.pathModifier.AbsPath(config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to expand output path (%s): %w", config.OutputPath, err)
	}

	a.logger.Infof("Converting %s (%s profile)", xmlPath, profile.Name)

	result := a.converter(config).ConvertFile(xmlPath, outputPath, profile)
	if result.Err != nil {
		a.logger.Errorf("Error processing file %s: %s", xmlPath, result.Err)
	}

	return a.finish(config, test.Results{result}, reportPathEnvKey, outputPath)
}

func (a app) batch(config Config, unitDir, instrumentDir string) error {
	unit, err := converters.ByName(converters.Unit)
	if err != nil {
		return err
	}
	instrument, err := converters.ByName(converters.Instrument)
	if err != nil {
		return err
	}

	outputDir, err := a.pathModifier.AbsPath(config.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output directory (%s): %w", config.OutputDir, err)
	}

	results := a.converter(config).ConvertDirs([]test.Input{
		{Dir: unitDir, Profile: unit},
		{Dir: instrumentDir, Profile: instrument},
	}, outputDir)

	a.logger.Println()
	a.logger.Infof("Processed reports (%d)", len(results))
	results.PrintSummary(os.Stdout)

	return a.finish(config, results, reportDirEnvKey, outputDir)
}

// finish post-processes the written reports, the returned error decides the exit code.
func (a app) finish(config Config, results test.Results, exportKey, exportValue string) error {
	written := results.Succeeded()

	if secrets := config.secrets(); len(secrets) > 0 && len(written) > 0 {
		if err := fileredactor.NewFileRedactor(a.fileManager, a.logger).RedactFiles(written.OutputPaths(), secrets); err != nil {
			return err
		}
	}

	if config.UploadURL != "" && len(written) > 0 {
		a.logger.Println()
		a.logger.Infof("Uploading reports")

		var sources []report.Source
		for _, result := range written {
			sources = append(sources, report.Source{Path: result.OutputPath, Category: result.Profile})
		}

		uploader := report.NewJSONReportUploader(config.UploadURL, string(config.UploadToken), config.ToolName+" "+config.ToolVersion, uploadConcurrency, a.logger)
		for _, err := range uploader.DeployReports(sources) {
			a.logger.Warnf("Failed to upload report: %s", err)
		}
	}

	if config.ExportEnv && len(written) > 0 {
		if err := a.exportEnv(exportKey, exportValue); err != nil {
			return fmt.Errorf("failed to export %s: %w", exportKey, err)
		}
		a.logger.Printf("The JSON report location is now available in the Environment Variable: %s (value: %s)", exportKey, exportValue)
	}

	if err := results.Err(); err != nil {
		if config.Strict {
			return err
		}
		a.logger.Warnf("%d of %d reports could not be converted", len(results.Failed()), len(results))
		return nil
	}

	a.logger.Println()
	a.logger.Donef("Success")

	return nil
}

package main

import (
	"strings"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-steplib/steps-junit-to-json/test/converters"
	"github.com/bitrise-steplib/steps-junit-to-json/test/testreport"
)

const (
	defaultOutputPath  = "results/results.json"
	defaultOutputDir   = "results"
	defaultToolName    = "Sudoku"
	defaultToolVersion = "1.0"
)

// Config ...
type Config struct {
	OutputPath      string          `env:"output_path"`
	OutputDir       string          `env:"output_dir"`
	Profile         string          `env:"profile"`
	ToolName        string          `env:"tool_name"`
	ToolVersion     string          `env:"tool_version"`
	Strict          bool            `env:"strict"`
	DebugMode       bool            `env:"debug_mode"`
	ExportEnv       bool            `env:"export_env"`
	UploadURL       string          `env:"upload_url"`
	UploadToken     stepconf.Secret `env:"upload_token"`
	SecretsToRedact stepconf.Secret `env:"secrets_to_redact"`
}

func parseConfig(repository env.Repository) (Config, error) {
	var config Config
	if err := stepconf.NewInputParser(repository).Parse(&config); err != nil {
		return Config{}, err
	}

	if config.OutputPath == "" {
		config.OutputPath = defaultOutputPath
	}
	if config.OutputDir == "" {
		config.OutputDir = defaultOutputDir
	}
	if config.Profile == "" {
		config.Profile = converters.Generic
	}
	if config.ToolName == "" {
		config.ToolName = defaultToolName
	}
	if config.ToolVersion == "" {
		config.ToolVersion = defaultToolVersion
	}

	return config, nil
}

func (c Config) tool() testreport.Tool {
	return testreport.Tool{Name: c.ToolName, Version: c.ToolVersion}
}

func (c Config) secrets() []string {
	var secrets []string
	for _, line := range strings.Split(string(c.SecretsToRedact), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			secrets = append(secrets, line)
		}
	}
	return secrets
}

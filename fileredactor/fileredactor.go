package fileredactor

import (
	"fmt"
	"io"
	"os"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/redactwriter"
)

// FileRedactor is an interface for a structure which, given a slice of file paths and another slice of secrets can
// process the specified files to redact secrets from them.
type FileRedactor interface {
	RedactFiles([]string, []string) error
}

type fileRedactor struct {
	fileManager fileutil.FileManager
	logger      log.Logger
}

// NewFileRedactor returns a structure that implements the FileRedactor interface
func NewFileRedactor(manager fileutil.FileManager, logger log.Logger) FileRedactor {
	return fileRedactor{
		fileManager: manager,
		logger:      logger,
	}
}

func (f fileRedactor) RedactFiles(filePaths []string, secrets []string) error {
	if len(secrets) == 0 {
		return nil
	}

	for _, path := range filePaths {
		if err := f.redactFile(path, secrets); err != nil {
			return fmt.Errorf("failed to redact file (%s): %w", path, err)
		}
		f.logger.Debugf("Redacted %s", path)
	}

	return nil
}

func (f fileRedactor) redactFile(path string, secrets []string) error {
	source, err := f.fileManager.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file for redaction (%s): %w", path, err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			f.logger.Warnf("Failed to close file: %s", err)
		}
	}()

	newPath := path + ".redacted"
	destination, err := os.Create(newPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file for redaction: %w", err)
	}
	defer func() {
		if err := destination.Close(); err != nil {
			f.logger.Warnf("Failed to close file: %s", err)
		}
	}()

	redactWriter := redactwriter.New(secrets, destination, f.logger)
	if _, err := io.Copy(redactWriter, source); err != nil {
		return fmt.Errorf("failed to redact secrets: %w", err)
	}

	if err := redactWriter.Close(); err != nil {
		return fmt.Errorf("failed to close redact writer: %w", err)
	}

	// the redacted copy replaces the report
	err = os.Rename(newPath, path)
	if err != nil {
		return fmt.Errorf("failed to overwrite old file (%s) with redacted file: %w", path, err)
	}

	return nil
}

package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-junit-to-json/report/api"
)

const jsonContentType = "application/json"

// JSONReportUploader uploads converted reports to the test report dashboard.
type JSONReportUploader struct {
	client      api.ClientAPI
	logger      log.Logger
	tool        string
	concurrency int
}

// NewJSONReportUploader ...
func NewJSONReportUploader(baseURL, authToken, tool string, concurrency int, logger log.Logger) JSONReportUploader {
	client := api.NewClient(baseURL, authToken, logger)
	if concurrency < 1 {
		concurrency = 1
	}

	return JSONReportUploader{
		client:      client,
		logger:      logger,
		tool:        tool,
		concurrency: concurrency,
	}
}

// DeployReports ...
func (h *JSONReportUploader) DeployReports(sources []Source) []error {
	reports, err := collectReports(sources)
	if err != nil {
		return []error{err}
	}

	h.logger.Printf("Found reports (%d):", len(reports))
	for _, report := range reports {
		h.logger.Printf("- %s", report.Name)
	}

	validatedReports, validationErrors := h.validate(reports)
	if len(validationErrors) != 0 {
		h.logger.Warnf("Validation errors:\n")

		for _, validationError := range validationErrors {
			h.logger.Warnf("- %s\n", validationError)
		}
	}

	var uploadErrors []error
	for _, report := range validatedReports {
		if err := h.uploadReport(report); err != nil {
			uploadErrors = append(uploadErrors, err)
		}
	}

	return uploadErrors
}

func (h *JSONReportUploader) validate(reports []Report) ([]Report, []error) {
	var validatedReports []Report
	var validationErrors []error

	for _, report := range reports {
		valid := len(report.Assets) != 0

		for _, asset := range report.Assets {
			if asset.FileSize == 0 || !strings.HasPrefix(asset.ContentType, jsonContentType) {
				valid = false
				break
			}
		}

		if valid {
			validatedReports = append(validatedReports, report)
			continue
		}

		validationErrors = append(validationErrors, fmt.Errorf("%s is not a JSON report", report.Name))
	}

	return validatedReports, validationErrors
}

func (h *JSONReportUploader) uploadReport(report Report) error {
	h.logger.Println()
	h.logger.Printf("Uploading %s", report.Name)

	serverReport, err := h.createReport(report)
	if err != nil {
		return err
	}

	allAssetsUploaded := true
	errors := h.uploadAssets(report.Assets, serverReport.AssetURLs)
	if 0 < len(errors) {
		for _, uploadError := range errors {
			h.logger.Warnf("Asset upload failed:\n")
			h.logger.Warnf("- %s", uploadError)
		}

		allAssetsUploaded = false

		h.logger.Warnf("Test report will be marked unsuccessful as some assets could not be saved")
	}

	err = h.finishReport(serverReport.Identifier, allAssetsUploaded)
	if err != nil {
		return err
	}

	if allAssetsUploaded {
		h.logger.Donef("Uploaded %s", report.Name)
	}

	return nil
}

func (h *JSONReportUploader) createReport(report Report) (ServerReport, error) {
	var assets []api.CreateReportAsset
	for _, asset := range report.Assets {
		assets = append(assets, api.CreateReportAsset{
			RelativePath: asset.TestDirRelativePath,
			FileSize:     asset.FileSize,
			ContentType:  asset.ContentType,
		})
	}

	resp, err := h.client.CreateReport(api.CreateReportParameters{
		Title:    report.Name,
		Category: report.Info.Category,
		Tool:     h.tool,
		Assets:   assets,
	})
	if err != nil {
		return ServerReport{}, err
	}

	urls := make(map[string]string)
	for _, assetURL := range resp.AssetURLs {
		urls[assetURL.RelativePath] = assetURL.URL
	}

	return ServerReport{
		Identifier: resp.Identifier,
		AssetURLs:  urls,
	}, nil
}

func (h *JSONReportUploader) uploadAssets(assets []Asset, urls map[string]string) []error {
	var errors []error
	var mu sync.Mutex
	var wg sync.WaitGroup

	jobs := make(chan bool, h.concurrency)

	for _, item := range assets {
		wg.Add(1)

		go func(asset Asset) {
			defer wg.Done()
			defer func() {
				<-jobs
			}()

			jobs <- true

			h.logger.Debugf("Uploading %s", asset.TestDirRelativePath)

			var err error
			if url, ok := urls[asset.TestDirRelativePath]; !ok {
				err = fmt.Errorf("missing upload url for %s", asset.TestDirRelativePath)
			} else {
				err = h.client.UploadAsset(url, asset.Path, asset.ContentType)
			}

			if err != nil {
				mu.Lock()
				errors = append(errors, err)
				mu.Unlock()
			}
		}(item)
	}

	wg.Wait()

	return errors
}

func (h *JSONReportUploader) finishReport(identifier string, allAssetsUploaded bool) error {
	return h.client.FinishReport(identifier, allAssetsUploaded)
}

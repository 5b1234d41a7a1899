package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// ClientAPI ...
type ClientAPI interface {
	CreateReport(params CreateReportParameters) (CreateReportResponse, error)
	UploadAsset(url, path, contentType string) error
	FinishReport(identifier string, allAssetsUploaded bool) error
}

// HTTPClient ...
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TestReportClient talks to the test report dashboard.
type TestReportClient struct {
	logger      log.Logger
	httpClient  HTTPClient
	fileManager fileutil.FileManager
	baseURL     string
	authToken   string
}

// NewClient ...
func NewClient(baseURL, authToken string, logger log.Logger) *TestReportClient {
	retryClient := retryhttp.NewClient(logger)
	// keeps the last status code in the error once the retries are exhausted
	retryClient.CheckRetry = retryablehttp.ErrorPropagatedRetryPolicy

	return &TestReportClient{
		logger:      logger,
		httpClient:  retryClient.StandardClient(),
		fileManager: fileutil.NewFileManager(),
		baseURL:     baseURL,
		authToken:   authToken,
	}
}

// CreateReport ...
func (t *TestReportClient) CreateReport(params CreateReportParameters) (CreateReportResponse, error) {
	url := fmt.Sprintf("%s/test_reports.json", t.baseURL)

	body, err := json.Marshal(params)
	if err != nil {
		return CreateReportResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return CreateReportResponse{}, err
	}

	respBody, err := t.perform(req, true)
	if err != nil {
		return CreateReportResponse{}, err
	}

	var response CreateReportResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return CreateReportResponse{}, fmt.Errorf("failed to parse create report response: %w", err)
	}

	return response, nil
}

// UploadAsset uploads the file at path to the pre-signed url.
func (t *TestReportClient) UploadAsset(url, path, contentType string) error {
	file, err := t.fileManager.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			t.logger.Warnf("Failed to close %s: %s", path, err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	if _, err := t.perform(req, false); err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}

	return nil
}

// FinishReport ...
func (t *TestReportClient) FinishReport(identifier string, allAssetsUploaded bool) error {
	url := fmt.Sprintf("%s/test_reports/%s.json", t.baseURL, identifier)

	type parameters struct {
		Uploaded bool `json:"is_uploaded"`
	}
	params := parameters{Uploaded: allAssetsUploaded}

	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	_, err = t.perform(req, true)
	if err != nil {
		return err
	}

	return nil
}

// perform sends the request and returns the response body.
// Dashboard requests are authenticated, asset uploads go to pre-signed urls.
func (t *TestReportClient) perform(request *http.Request, authenticated bool) ([]byte, error) {
	if authenticated {
		request.Header.Set("Content-Type", "application/json; charset=UTF-8")
		// Header.Set canonizes the keys, so we need to set the token this way.
		request.Header["BUILD_API_TOKEN"] = []string{t.authToken}
	}

	dump, err := httputil.DumpRequest(request, false)
	if err != nil {
		t.logger.Warnf("Request dump failed: %s", err)
	} else {
		t.logger.Debugf("Request dump: %s", string(dump))
	}

	resp, err := t.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.logger.Warnf("Failed to close response body: %s", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	t.logger.Debugf("Response (%d): %s", resp.StatusCode, string(body))

	if resp.StatusCode >= 300 || resp.StatusCode < 200 {
		message, err := parseErrorMessage(body)
		if err != nil {
			t.logger.Warnf("Failed to parse error message from the response: %s", err)
		}

		return nil, fmt.Errorf("request to %s failed: status code should be 2xx (%d): %s", request.URL, resp.StatusCode, message)
	}

	return body, nil
}

func parseErrorMessage(body []byte) (string, error) {
	type errorResponse struct {
		Message string `json:"error_msg"`
	}

	var response errorResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	return response.Message, nil
}

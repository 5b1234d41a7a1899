package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-junit-to-json/report/api/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	authToken = "auth-token"
	baseURL   = "base-url"
)

func TestCreateReport(t *testing.T) {
	tests := []struct {
		name               string
		params             CreateReportParameters
		responseStatusCode int
		responseBody       string
		wantError          bool
		expectedError      error
		expectedOutput     CreateReportResponse
	}{
		{
			name: "Successful request",
			params: CreateReportParameters{
				Title:    "TEST-my.sudoku.game.UnitTests",
				Category: "unit",
				Tool:     "Sudoku 1.0",
				Assets: []CreateReportAsset{
					{
						RelativePath: "TEST-my.sudoku.game.UnitTests.json",
						FileSize:     10,
						ContentType:  "application/json",
					},
				},
			},
			responseStatusCode: 200,
			responseBody: `{
"id": "some-id",
"assets": [
	{
		"relative_path": "TEST-my.sudoku.game.UnitTests.json",
		"upload_url": "http://test.test"
	}]
}`,
			wantError: false,
			expectedOutput: CreateReportResponse{
				Identifier: "some-id",
				AssetURLs: []CreateReportURL{
					{
						RelativePath: "TEST-my.sudoku.game.UnitTests.json",
						URL:          "http://test.test",
					},
				},
			},
		},
		{
			name: "Handle failure",
			params: CreateReportParameters{
				Title: "another-title",
				Assets: []CreateReportAsset{
					{
						RelativePath: "results.json",
						FileSize:     3,
						ContentType:  "application/json",
					},
				},
			},
			responseStatusCode: 301,
			responseBody:       "{\"error_msg\": \"There was an error\"}",
			wantError:          true,
			expectedError:      fmt.Errorf("request to %s/test_reports.json failed: status code should be 2xx (301): There was an error", baseURL),
		},
		{
			name:               "Invalid response",
			params:             CreateReportParameters{Title: "title"},
			responseStatusCode: 201,
			responseBody:       "<html/>",
			wantError:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiClient, mockHTTPClient := createSutAndMock(t)

			var request http.Request
			setupMockNetworking(t, mockHTTPClient, &request, tt.responseBody, tt.responseStatusCode)

			response, err := apiClient.CreateReport(tt.params)
			assert.Equal(t, fmt.Sprintf("%s/test_reports.json", baseURL), request.URL.String())
			assert.Equal(t, []string{authToken}, request.Header["BUILD_API_TOKEN"]) //nolint:staticcheck // See TestReportClient.perform()

			if tt.wantError {
				require.Error(t, err)
				if tt.expectedError != nil {
					assert.Equal(t, tt.expectedError, err)
				}
			} else {
				var received CreateReportParameters
				err = json.NewDecoder(request.Body).Decode(&received)
				assert.NoError(t, err)
				assert.Equal(t, tt.params, received)

				assert.Equal(t, tt.expectedOutput, response)
			}

			mockHTTPClient.AssertExpectations(t)
		})
	}
}

func TestUploadAsset(t *testing.T) {
	content := []byte(`{"results": {}}`)
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, content, 0644))

	tests := []struct {
		name               string
		path               string
		responseStatusCode int
		wantError          bool
	}{
		{
			name:               "Successful upload",
			path:               path,
			responseStatusCode: 200,
		},
		{
			name:               "Handle failure",
			path:               path,
			responseStatusCode: 403,
			wantError:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiClient, mockHTTPClient := createSutAndMock(t)

			var request http.Request
			setupMockNetworking(t, mockHTTPClient, &request, "", tt.responseStatusCode)

			err := apiClient.UploadAsset("http://storage.test/results.json?signature=abc", tt.path, "application/json")
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to upload "+tt.path)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, http.MethodPut, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Empty(t, request.Header["BUILD_API_TOKEN"]) //nolint:staticcheck // See TestReportClient.perform()

			body, err := io.ReadAll(request.Body)
			require.NoError(t, err)
			assert.Equal(t, content, body)
		})
	}
}

func TestUploadAsset_MissingFile(t *testing.T) {
	apiClient, _ := createSutAndMock(t)

	err := apiClient.UploadAsset("http://storage.test", filepath.Join(t.TempDir(), "missing.json"), "application/json")
	require.Error(t, err)
}

func TestFinishReport(t *testing.T) {
	tests := []struct {
		name               string
		identifier         string
		allAssetsUploaded  bool
		responseStatusCode int
		responseBody       string
		wantError          bool
		expectedError      error
	}{
		{
			name:               "Successful request",
			identifier:         "report-id",
			allAssetsUploaded:  true,
			responseStatusCode: 200,
			responseBody:       "",
			wantError:          false,
		},
		{
			name:               "Handle failure",
			identifier:         "report-id",
			allAssetsUploaded:  false,
			responseStatusCode: 301,
			responseBody:       "{\"error_msg\": \"There was an error\"}",
			wantError:          true,
			expectedError:      fmt.Errorf("request to %s/test_reports/report-id.json failed: status code should be 2xx (301): There was an error", baseURL),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiClient, mockHTTPClient := createSutAndMock(t)

			var request http.Request
			setupMockNetworking(t, mockHTTPClient, &request, tt.responseBody, tt.responseStatusCode)

			err := apiClient.FinishReport(tt.identifier, tt.allAssetsUploaded)
			assert.Equal(t, fmt.Sprintf("%s/test_reports/%s.json", baseURL, tt.identifier), request.URL.String())
			assert.Equal(t, []string{authToken}, request.Header["BUILD_API_TOKEN"]) //nolint:staticcheck // See TestReportClient.perform()

			if tt.wantError {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)

				var received map[string]bool
				require.NoError(t, json.NewDecoder(request.Body).Decode(&received))
				assert.Equal(t, map[string]bool{"is_uploaded": tt.allAssetsUploaded}, received)
			}

			mockHTTPClient.AssertExpectations(t)
		})
	}
}

func createSutAndMock(t *testing.T) (TestReportClient, *mocks.HttpClient) {
	mockHTTPClient := mocks.NewHttpClient(t)
	client := TestReportClient{
		logger:      log.NewLogger(),
		httpClient:  mockHTTPClient,
		fileManager: fileutil.NewFileManager(),
		authToken:   authToken,
		baseURL:     baseURL,
	}

	return client, mockHTTPClient
}

func setupMockNetworking(t *testing.T, mockHTTPClient *mocks.HttpClient, request *http.Request, body string, statusCode int) {
	response := &http.Response{Body: io.NopCloser(bytes.NewReader([]byte(body)))}
	response.StatusCode = statusCode

	mockHTTPClient.On("Do", mock.Anything).Return(response, nil).Run(func(args mock.Arguments) {
		if request == nil {
			return
		}

		value, ok := args.Get(0).(*http.Request)
		if !ok {
			require.Fail(t, "Failed to cast to http.Request")
		}

		*request = *value
		response.Request = value
	})
}

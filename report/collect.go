package report

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func collectReports(sources []Source) ([]Report, error) {
	var reports []Report

	for _, source := range sources {
		info, err := os.Stat(source.Path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			continue
		}

		name := filepath.Base(source.Path)
		reports = append(reports, Report{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Info: Info{Category: source.Category},
			Assets: []Asset{
				{
					Path:                source.Path,
					TestDirRelativePath: name,
					FileSize:            info.Size(),
					ContentType:         detectContentType(source.Path),
				},
			},
		})
	}

	return reports, nil
}

func detectContentType(path string) string {
	fallbackType := "application/octet-stream"

	// Content sniffing reports JSON as plain text.
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}

	file, err := os.Open(path)
	if err != nil {
		return fallbackType
	}
	defer func() {
		if err := file.Close(); err != nil {
			// This is empty on purpose to please the linter
		}
	}()

	// At most, the first 512 bytes of data are used:
	// https://golang.org/src/net/http/sniff.go?s=646:688#L11
	buff := make([]byte, 512)

	bytesRead, err := file.Read(buff)
	if err != nil && err != io.EOF {
		return fallbackType
	}

	// Slice to remove fill-up zero values which cause a wrong content type detection in the next step
	buff = buff[:bytesRead]

	return http.DetectContentType(buff)
}

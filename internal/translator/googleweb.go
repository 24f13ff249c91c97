package translator

import (
	"fmt"
	"net/url"
)

const googleWebEndpoint = "https://translate.google.com/translate"

// GoogleWebService builds query-parameter redirects to Google's web
// translation proxy with the source language left on auto-detect.
type GoogleWebService struct {
	endpoint string
}

func NewGoogleWebService() *GoogleWebService {
	return &GoogleWebService{endpoint: googleWebEndpoint}
}

func (s *GoogleWebService) Name() string {
	return "google"
}

func (s *GoogleWebService) BuildURL(sourceURL, targetLang string) (string, error) {
	if sourceURL == "" {
		return "", fmt.Errorf("empty source url")
	}
	if targetLang == "" {
		return "", fmt.Errorf("empty target language")
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	params := url.Values{}
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("u", sourceURL)
	u.RawQuery = params.Encode()

	return u.String(), nil
}

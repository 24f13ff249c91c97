package translator

import (
	"fmt"
	"net/url"
	"strings"
)

const lingvaDefaultInstance = "https://lingva.ml"

// LingvaService builds redirects to a Lingva instance, a self-hostable
// translation front end. The source URL travels as the final path segment.
type LingvaService struct {
	instance string
}

// NewLingvaService returns a service pointed at instance, or at the public
// lingva.ml instance when instance is empty.
func NewLingvaService(instance string) *LingvaService {
	if instance == "" {
		instance = lingvaDefaultInstance
	}
	return &LingvaService{instance: strings.TrimSuffix(instance, "/")}
}

func (s *LingvaService) Name() string {
	return "lingva"
}

func (s *LingvaService) BuildURL(sourceURL, targetLang string) (string, error) {
	if sourceURL == "" {
		return "", fmt.Errorf("empty source url")
	}
	if targetLang == "" {
		return "", fmt.Errorf("empty target language")
	}

	return fmt.Sprintf("%s/auto/%s/%s",
		s.instance, url.PathEscape(targetLang), url.QueryEscape(sourceURL)), nil
}

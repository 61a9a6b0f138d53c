package llm

import (
	"net/http"
	"net/url"
)

func parseURL(raw string) (*url.URL, error) {
	if raw == "" {
		raw = "http://localhost:11434"
	}
	return url.Parse(raw)
}

func httpClient() *http.Client {
	return http.DefaultClient
}

package api

import (
	"fmt"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// proxyFromEnvironment returns the proxy configured through HTTP_PROXY,
// HTTPS_PROXY and NO_PROXY for target, or "" when the request goes direct.
func proxyFromEnvironment(target string) (string, error) {
	return proxyFor(target, httpproxy.FromEnvironment())
}

func proxyFor(target string, cfg *httpproxy.Config) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", target, err)
	}

	proxyURL, err := cfg.ProxyFunc()(u)
	if err != nil {
		return "", fmt.Errorf("invalid proxy configuration: %w", err)
	}
	if proxyURL == nil {
		return "", nil
	}
	return proxyURL.String(), nil
}

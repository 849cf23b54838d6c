package api

import (
	"fmt"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/diogo/chatllm/internal/models"
)

// HTTPDoer is the part of tls_client.HttpClient the chat client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a remote chat completion service
type Client struct {
	httpClient   HTTPDoer
	baseURL      string
	chatPath     string
	model        string
	responsePath string
	timeout      time.Duration
	headers      map[string]string
	logger       zerolog.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithModel sets the model name sent with every request
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithChatPath sets the path of the chat endpoint relative to the base URL
func WithChatPath(path string) ClientOption {
	return func(c *Client) {
		c.chatPath = path
	}
}

// WithResponsePath sets the gjson path of the reply text in the response body
func WithResponsePath(path string) ClientOption {
	return func(c *Client) {
		c.responsePath = path
	}
}

// WithTimeout bounds each round trip. Zero disables the timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the tls-client transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithHeader adds a header to every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client for the service rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		chatPath:     models.DefaultChatPath,
		model:        models.DefaultModel,
		responsePath: models.DefaultResponsePath,
		headers:      models.DefaultHeaders(),
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		httpClient, err := newTLSClient(client.baseURL, client.timeout)
		if err != nil {
			return nil, err
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// newTLSClient builds the default transport, honouring proxy environment variables
func newTLSClient(baseURL string, timeout time.Duration) (tls_client.HttpClient, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutMilliseconds(int(timeout / time.Millisecond)),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithNotFollowRedirects(),
	}

	proxyURL, err := proxyFromEnvironment(baseURL)
	if err != nil {
		return nil, err
	}
	if proxyURL != "" {
		options = append(options, tls_client.WithProxyUrl(proxyURL))
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return httpClient, nil
}

// BaseURL returns the service root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChatURL returns the full URL of the chat endpoint
func (c *Client) ChatURL() string {
	return c.baseURL + "/" + strings.TrimLeft(c.chatPath, "/")
}

// Model returns the model name sent with requests
func (c *Client) Model() string {
	return c.model
}

// ResponsePath returns the gjson path used to read replies
func (c *Client) ResponsePath() string {
	return c.responsePath
}

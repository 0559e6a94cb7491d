package update

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher
func NewRealHTTPFetcher(client *http.Client) HTTPFetcher {
	return &RealHTTPFetcher{client: client}
}

func (f *RealHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// MockHTTPFetcher simulates HTTP responses for testing
type MockHTTPFetcher struct {
	responses map[string]mockResponse
	errors    map[string]error
	Requests  []*http.Request
}

type mockResponse struct {
	status  int
	body    string
	headers http.Header
}

// NewMockHTTPFetcher creates a mock HTTP fetcher
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string]mockResponse),
		errors:    make(map[string]error),
	}
}

// AddResponse registers a mock response for a URL
func (m *MockHTTPFetcher) AddResponse(urlStr string, statusCode int, body string) {
	m.responses[urlStr] = mockResponse{status: statusCode, body: body, headers: make(http.Header)}
}

// AddResponseWithHeaders registers a mock response carrying headers
func (m *MockHTTPFetcher) AddResponseWithHeaders(urlStr string, statusCode int, body string, headers http.Header) {
	m.responses[urlStr] = mockResponse{status: statusCode, body: body, headers: headers.Clone()}
}

// AddError registers a mock error for a URL
func (m *MockHTTPFetcher) AddError(urlStr string, err error) {
	m.errors[urlStr] = err
}

func (m *MockHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	urlStr := req.URL.String()
	if err, ok := m.errors[urlStr]; ok {
		return nil, err
	}
	parsedURL, _ := url.Parse(urlStr)
	if r, ok := m.responses[urlStr]; ok {
		return &http.Response{
			StatusCode: r.status,
			Body:       io.NopCloser(strings.NewReader(r.body)),
			Header:     r.headers.Clone(),
			Request:    &http.Request{URL: parsedURL},
		}, nil
	}
	// Return 404 for unknown URLs
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("Not Found")),
		Header:     make(http.Header),
		Request:    &http.Request{URL: parsedURL},
	}, nil
}

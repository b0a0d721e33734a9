package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Backend defines the dashboard's view of the clustering service.
// This interface is implemented by *Client and can be used for testing.
type Backend interface {
	FetchClusters(ctx context.Context) (*ClusterList, error)
	SubmitComment(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	FetchStats(ctx context.Context) (*Stats, error)
	FetchCluster(ctx context.Context, id string) (*Cluster, error)
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Client talks to the clustering service HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000"

const (
	defaultUserAgent = "clusterboard/0.1"
	requestTimeout   = 10 * time.Second
	maxDownloadSize  = 64 << 20
)

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// NewClient builds a Client for the given base URL ("host:port" is accepted).
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized base URL the client targets.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchClusters retrieves every cluster with its comments.
func (c *Client) FetchClusters(ctx context.Context) (*ClusterList, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ClusterList
	if err := c.do(ctx, http.MethodGet, "/api/clusters", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SubmitComment posts a comment and returns the backend's cluster assignment.
func (c *Client) SubmitComment(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/comment", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchStats retrieves aggregate statistics.
func (c *Client) FetchStats(ctx context.Context) (*Stats, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchCluster retrieves a single cluster by identifier.
func (c *Client) FetchCluster(ctx context.Context, id string) (*Cluster, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("cluster id required")
	}
	rel := &url.URL{
		Path:    "/api/cluster/" + id,
		RawPath: "/api/cluster/" + url.PathEscape(id),
	}
	var payload Cluster
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Health queries the backend health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SidebarRefresh asks the backend to refresh its sidebar state.
func (c *Client) SidebarRefresh(ctx context.Context) (*RefreshResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload RefreshResult
	if err := c.do(ctx, http.MethodPost, "/api/sidebar/refresh", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchSettings returns the backend settings document.
func (c *Client) FetchSettings(ctx context.Context) (Settings, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Settings
	if err := c.do(ctx, http.MethodGet, "/api/sidebar/settings", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UpdateSettings posts a settings document.
func (c *Client) UpdateSettings(ctx context.Context, settings Settings) (*SaveSettingsResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload SaveSettingsResult
	if err := c.do(ctx, http.MethodPost, "/api/sidebar/settings", settings, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchHelp returns the backend help text.
func (c *Client) FetchHelp(ctx context.Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	var payload struct {
		Help string `json:"help"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/sidebar/help", nil, &payload); err != nil {
		return "", err
	}
	return payload.Help, nil
}

// FetchAbout returns the backend about text.
func (c *Client) FetchAbout(ctx context.Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	var payload struct {
		About string `json:"about"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/sidebar/about", nil, &payload); err != nil {
		return "", err
	}
	return payload.About, nil
}

// UploadFile sends content as the single "file" field of a multipart form.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if content == nil {
		return nil, fmt.Errorf("upload content is nil")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", path.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	rel := &url.URL{Path: "/api/sidebar/upload"}
	req, err := c.newRequest(ctx, http.MethodPost, rel, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var payload UploadResult
	if err := c.send(req, rel, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Download fetches the clustered data export as raw bytes.
func (c *Client) Download(ctx context.Context) (*Download, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/api/sidebar/download"}
	req, err := c.newRequest(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, statusError(rel, resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("read download: %w", err)
	}
	return &Download{
		Filename:    attachmentName(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *Client) do(ctx context.Context, method, p string, body, dest any) error {
	return c.doURL(ctx, method, &url.URL{Path: p}, body, dest)
}

// doURL sends a JSON request to rel. Callers with ids in the path set RawPath
// so escaped separators survive.
func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, rel, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, rel, dest)
}

func (c *Client) newRequest(ctx context.Context, method string, rel *url.URL, body io.Reader) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func (c *Client) send(req *http.Request, rel *url.URL, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return statusError(rel, resp)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError builds a StatusError, lifting the backend's {"error": "..."} body when present.
func statusError(rel *url.URL, resp *http.Response) error {
	se := &StatusError{Path: rel.String(), Code: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		se.Message = strings.TrimSpace(body.Error)
		if se.Message == "" {
			se.Message = strings.TrimSpace(body.Message)
		}
	}
	return se
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return ""
	}
	return path.Base(params["filename"])
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:1234" {
		t.Fatalf("url = %q, want http://example.com:1234", u.String())
	}

	u, err = parseBaseURL("https://example.com/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) returned nil error, want missing host")
	}
}

func TestClient_FetchesEndpoints(t *testing.T) {
	t.Parallel()

	var gotUserAgent string
	var gotSubmit SubmitRequest
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/clusters":
			_ = json.NewEncoder(w).Encode(ClusterList{
				Clusters:      []Cluster{{ID: "c1", CommentCount: 2, RepresentativeText: "Hello"}},
				TotalClusters: 1,
				TotalComments: 2,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/comment":
			gotContentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotSubmit)
			_ = json.NewEncoder(w).Encode(SubmitResult{CommentID: "m1", ClusterID: "c1", Similarity: 0.8234})
		case r.URL.Path == "/api/stats":
			_ = json.NewEncoder(w).Encode(Stats{TotalComments: 4, TotalClusters: 2, SimilarityThreshold: 0.65, AvgClusterSize: 2})
		case r.URL.Path == "/api/cluster/c 1":
			_ = json.NewEncoder(w).Encode(Cluster{ID: "c 1", CommentCount: 1})
		case r.URL.Path == "/health":
			_ = json.NewEncoder(w).Encode(Health{Status: "healthy", Model: "all-mpnet-base-v2"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	list, err := c.FetchClusters(ctx)
	if err != nil {
		t.Fatalf("FetchClusters returned error: %v", err)
	}
	if len(list.Clusters) != 1 || list.Clusters[0].ID != "c1" || list.TotalComments != 2 {
		t.Fatalf("FetchClusters payload = %#v, want one cluster c1", list)
	}

	res, err := c.SubmitComment(ctx, SubmitRequest{Text: "hi there"})
	if err != nil {
		t.Fatalf("SubmitComment returned error: %v", err)
	}
	if res.Similarity != 0.8234 || res.IsNewCluster {
		t.Fatalf("SubmitComment payload = %#v", res)
	}
	if gotSubmit.Text != "hi there" || gotSubmit.UserID != "" {
		t.Fatalf("submitted body = %#v, want text only", gotSubmit)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}

	stats, err := c.FetchStats(ctx)
	if err != nil {
		t.Fatalf("FetchStats returned error: %v", err)
	}
	if stats.TotalClusters != 2 || stats.SimilarityThreshold != 0.65 {
		t.Fatalf("FetchStats payload = %#v", stats)
	}

	cluster, err := c.FetchCluster(ctx, "c 1")
	if err != nil {
		t.Fatalf("FetchCluster returned error: %v", err)
	}
	if cluster.ID != "c 1" {
		t.Fatalf("FetchCluster id = %q, want %q", cluster.ID, "c 1")
	}

	health, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("Health status = %q, want healthy", health.Status)
	}

	if !strings.HasPrefix(gotUserAgent, "clusterboard/") {
		t.Fatalf("User-Agent = %q, want clusterboard/*", gotUserAgent)
	}
}

func TestClient_FetchClusterEscapesID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		id          string
		wantPath    string
		wantEscaped string
	}{
		{"a b/c", "/api/cluster/a b/c", "/api/cluster/a%20b%2Fc"},
		{"50%", "/api/cluster/50%", "/api/cluster/50%25"},
		{"café", "/api/cluster/café", "/api/cluster/caf%C3%A9"},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			var gotPath, gotEscaped string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotEscaped = r.URL.Path, r.URL.EscapedPath()
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(Cluster{ID: tc.id})
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			cluster, err := c.FetchCluster(context.Background(), tc.id)
			if err != nil {
				t.Fatalf("FetchCluster returned error: %v", err)
			}
			if cluster.ID != tc.id {
				t.Fatalf("FetchCluster id = %q, want %q", cluster.ID, tc.id)
			}
			if gotPath != tc.wantPath {
				t.Fatalf("server path = %q, want %q", gotPath, tc.wantPath)
			}
			if gotEscaped != tc.wantEscaped {
				t.Fatalf("server escaped path = %q, want %q", gotEscaped, tc.wantEscaped)
			}
		})
	}
}

func TestClient_FetchClusterRequiresID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchCluster(context.Background(), "  "); err == nil {
		t.Fatalf("FetchCluster returned nil error, want error")
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clusters":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/comment":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Comment text is required"}`))
		case "/api/stats":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchClusters(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchClusters error = %v, want decode response error", err)
	}

	_, err = c.SubmitComment(context.Background(), SubmitRequest{Text: " "})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("SubmitComment error = %v, want *StatusError", err)
	}
	if se.Code != http.StatusBadRequest || se.Message != "Comment text is required" {
		t.Fatalf("StatusError = %#v, want 400 with backend message", se)
	}

	_, err = c.FetchStats(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchStats error = %v, want status 500 error", err)
	}

	_, err = c.FetchCluster(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("FetchCluster error = %v, want not found", err)
	}
}

func TestClient_UploadSendsMultipartFileField(t *testing.T) {
	t.Parallel()

	var gotName, gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sidebar/upload" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContent = string(data)
		_ = json.NewEncoder(w).Encode(UploadResult{Status: "uploaded", Filename: header.Filename})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	res, err := c.UploadFile(context.Background(), "/tmp/notes/comments.txt", strings.NewReader("first\nsecond"))
	if err != nil {
		t.Fatalf("UploadFile returned error: %v", err)
	}
	if res.Status != "uploaded" || res.Filename != "comments.txt" {
		t.Fatalf("UploadFile payload = %#v", res)
	}
	if gotName != "comments.txt" || gotContent != "first\nsecond" {
		t.Fatalf("server saw name=%q content=%q", gotName, gotContent)
	}
}

func TestClient_DownloadReturnsBytesAndFilename(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sidebar/download" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="clusters_20250101_101010.json"`)
		_, _ = w.Write([]byte(`[{"text":"a"}]`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	dl, err := c.Download(context.Background())
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if dl.Filename != "clusters_20250101_101010.json" {
		t.Fatalf("Filename = %q", dl.Filename)
	}
	if string(dl.Data) != `[{"text":"a"}]` {
		t.Fatalf("Data = %q", dl.Data)
	}
}

func TestClient_SidebarTextEndpoints(t *testing.T) {
	t.Parallel()

	var posted Settings
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/sidebar/help":
			_, _ = w.Write([]byte(`{"help":"how to"}`))
		case "/api/sidebar/about":
			_, _ = w.Write([]byte(`{"about":"v1"}`))
		case "/api/sidebar/refresh":
			_, _ = w.Write([]byte(`{"status":"refreshed","timestamp":"2025-01-01T10:00:00"}`))
		case "/api/sidebar/settings":
			if r.Method == http.MethodPost {
				_ = json.NewDecoder(r.Body).Decode(&posted)
				_ = json.NewEncoder(w).Encode(SaveSettingsResult{Status: "saved", Settings: posted})
				return
			}
			_, _ = w.Write([]byte(`{"embedding_size":768,"model_name":"all-mpnet-base-v2"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	if help, err := c.FetchHelp(ctx); err != nil || help != "how to" {
		t.Fatalf("FetchHelp = %q, %v", help, err)
	}
	if about, err := c.FetchAbout(ctx); err != nil || about != "v1" {
		t.Fatalf("FetchAbout = %q, %v", about, err)
	}
	if res, err := c.SidebarRefresh(ctx); err != nil || res.Status != "refreshed" {
		t.Fatalf("SidebarRefresh = %#v, %v", res, err)
	}
	settings, err := c.FetchSettings(ctx)
	if err != nil {
		t.Fatalf("FetchSettings returned error: %v", err)
	}
	if settings["model_name"] != "all-mpnet-base-v2" {
		t.Fatalf("settings = %#v", settings)
	}
	saved, err := c.UpdateSettings(ctx, Settings{"model_name": "other"})
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if saved.Status != "saved" || posted["model_name"] != "other" {
		t.Fatalf("UpdateSettings = %#v, posted %#v", saved, posted)
	}
}

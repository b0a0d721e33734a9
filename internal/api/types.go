package api

import (
	"time"
)

// MaxCommentLength is the longest comment, in characters, the backend accepts.
const MaxCommentLength = 500

// backendTimestampLayout matches Python's datetime.isoformat() without a zone.
const backendTimestampLayout = "2006-01-02T15:04:05.999999"

// Comment is a single submitted text as returned inside a cluster.
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
	ClusterID string `json:"cluster_id,omitempty"`
}

// ParsedTimestamp returns the creation timestamp as time.Time when possible.
func (c Comment) ParsedTimestamp() time.Time {
	return parseTime(c.Timestamp)
}

// Cluster mirrors one entry of /api/clusters and the /api/cluster/{id} payload.
type Cluster struct {
	ID                 string    `json:"cluster_id"`
	CommentCount       int       `json:"comment_count"`
	RepresentativeText string    `json:"representative_text"`
	CreatedAt          string    `json:"created_at"`
	UpdatedAt          string    `json:"updated_at"`
	Comments           []Comment `json:"comments"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (c Cluster) ParsedCreatedAt() time.Time {
	return parseTime(c.CreatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (c Cluster) ParsedUpdatedAt() time.Time {
	return parseTime(c.UpdatedAt)
}

// Clone returns a copy that shares no slices with c.
func (c Cluster) Clone() Cluster {
	dup := c
	if c.Comments != nil {
		dup.Comments = make([]Comment, len(c.Comments))
		copy(dup.Comments, c.Comments)
	}
	return dup
}

// ClusterList mirrors /api/clusters.
type ClusterList struct {
	Clusters      []Cluster `json:"clusters"`
	TotalClusters int       `json:"total_clusters"`
	TotalComments int       `json:"total_comments"`
}

// SubmitRequest is the body of POST /api/comment.
type SubmitRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id,omitempty"`
}

// SubmitResult mirrors the POST /api/comment response.
type SubmitResult struct {
	CommentID    string  `json:"comment_id"`
	ClusterID    string  `json:"cluster_id"`
	Similarity   float64 `json:"similarity"`
	IsNewCluster bool    `json:"is_new_cluster"`
}

// ClampedSimilarity returns Similarity limited to the documented 0.0-1.0 range.
func (r SubmitResult) ClampedSimilarity() float64 {
	switch {
	case r.Similarity != r.Similarity: // NaN
		return 0
	case r.Similarity < 0:
		return 0
	case r.Similarity > 1:
		return 1
	default:
		return r.Similarity
	}
}

// Stats mirrors /api/stats.
type Stats struct {
	TotalComments       int     `json:"total_comments" yaml:"total_comments"`
	TotalClusters       int     `json:"total_clusters" yaml:"total_clusters"`
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
	AvgClusterSize      float64 `json:"avg_cluster_size" yaml:"avg_cluster_size"`
}

// Health mirrors /health.
type Health struct {
	Status        string `json:"status"`
	Model         string `json:"model"`
	EmbeddingSize int    `json:"embedding_size"`
	TotalClusters int    `json:"total_clusters"`
	TotalComments int    `json:"total_comments"`
}

// Settings is the free-form settings document served by /api/sidebar/settings.
type Settings map[string]any

// RefreshResult mirrors POST /api/sidebar/refresh.
type RefreshResult struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// UploadResult mirrors POST /api/sidebar/upload.
type UploadResult struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// SaveSettingsResult mirrors POST /api/sidebar/settings.
type SaveSettingsResult struct {
	Status   string   `json:"status"`
	Settings Settings `json:"settings"`
}

// Download is a binary export fetched from /api/sidebar/download.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

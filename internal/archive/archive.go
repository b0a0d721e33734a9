// Package archive keeps a local copy of every export downloaded from the
// backend, so earlier snapshots of the clustering can be compared offline.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

// ErrNotFound is returned when no export matches the requested id.
var ErrNotFound = errors.New("export not found")

const (
	dataSuffix = ".data"
	metaSuffix = ".meta"
	keyLayout  = "20060102T150405Z"
)

// Entry describes one archived export.
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Filename    string    `json:"filename" yaml:"filename"`
	ContentType string    `json:"content_type" yaml:"content_type"`
	Size        int64     `json:"size" yaml:"size"`
	SavedAt     time.Time `json:"saved_at" yaml:"saved_at"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// Archive is a diskv-backed export store rooted at a directory.
type Archive struct {
	d   *diskv.Diskv
	log *slog.Logger
	now func() time.Time
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger used to report skipped entries.
func WithLogger(l *slog.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.log = l
		}
	}
}

// Open returns an archive under dir. The directory is created lazily.
func Open(dir string, opts ...Option) (*Archive, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("archive dir is empty")
	}
	a := &Archive{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      4 * 1024 * 1024,
		}),
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// BasePath is the directory the archive writes into.
func (a *Archive) BasePath() string {
	return a.d.BasePath
}

// Save stores data and its metadata and returns the new entry.
func (a *Archive) Save(filename, contentType, source string, data []byte) (Entry, error) {
	saved := a.now().UTC()
	e := Entry{
		ID:          saved.Format(keyLayout) + "-" + uuid.NewString()[:8],
		Filename:    path.Base(strings.TrimSpace(filename)),
		ContentType: contentType,
		Size:        int64(len(data)),
		SavedAt:     saved,
		Source:      source,
	}
	if e.Filename == "." || e.Filename == "/" {
		e.Filename = "export"
	}
	meta, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("encode export meta: %w", err)
	}
	if err := a.d.Write(e.ID+dataSuffix, data); err != nil {
		return Entry{}, fmt.Errorf("write export: %w", err)
	}
	if err := a.d.Write(e.ID+metaSuffix, meta); err != nil {
		_ = a.d.Erase(e.ID + dataSuffix)
		return Entry{}, fmt.Errorf("write export meta: %w", err)
	}
	return e, nil
}

// List returns every archived export, newest first. Entries whose metadata
// cannot be read are logged and left out.
func (a *Archive) List(ctx context.Context) ([]Entry, error) {
	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []Entry
	for key := range a.d.Keys(walkCtx.Done()) {
		if !strings.HasSuffix(key, metaSuffix) {
			continue
		}
		id := strings.TrimSuffix(key, metaSuffix)
		e, err := a.meta(id)
		if err != nil {
			a.log.Warn("skipping archived export", "id", id, "error", err)
			continue
		}
		out = append(out, e)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

// Get returns the metadata and payload for id.
func (a *Archive) Get(id string) (Entry, []byte, error) {
	e, err := a.meta(id)
	if err != nil {
		return Entry{}, nil, err
	}
	data, err := a.d.Read(id + dataSuffix)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("read export %s: %w", id, err)
	}
	return e, data, nil
}

// Delete removes an export. Unknown ids return ErrNotFound.
func (a *Archive) Delete(id string) error {
	if !a.d.Has(id + metaSuffix) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := a.d.Erase(id + metaSuffix); err != nil {
		return fmt.Errorf("delete export meta: %w", err)
	}
	if err := a.d.Erase(id + dataSuffix); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete export: %w", err)
	}
	return nil
}

func (a *Archive) meta(id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" || !a.d.Has(id+metaSuffix) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	raw, err := a.d.Read(id + metaSuffix)
	if err != nil {
		return Entry{}, fmt.Errorf("read export meta: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("decode export meta %s: %w", id, err)
	}
	return e, nil
}

// Exports are grouped into one directory per day: 20260102/<key>.
func keyToPathTransform(key string) *diskv.PathKey {
	if len(key) < 8 {
		return &diskv.PathKey{Path: []string{"misc"}, FileName: key}
	}
	return &diskv.PathKey{Path: []string{key[:8]}, FileName: key}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	return pk.FileName
}

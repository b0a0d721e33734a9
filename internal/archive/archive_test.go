package archive

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTest(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return a
}

func TestOpen_EmptyDirFails(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("Open returned nil error for empty dir")
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	a := openTest(t)
	a.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }

	e, err := a.Save("clusters.csv", "text/csv", "http://localhost:5000", []byte("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if e.Filename != "clusters.csv" || e.Size != 8 {
		t.Fatalf("unexpected entry %+v", e)
	}

	got, data, err := a.Get(e.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "a,b\n1,2\n" || got.ContentType != "text/csv" || !got.SavedAt.Equal(e.SavedAt) {
		t.Fatalf("Get = %+v %q", got, data)
	}

	if _, err := os.Stat(filepath.Join(a.BasePath(), "20260203", e.ID+dataSuffix)); err != nil {
		t.Fatalf("expected payload under a per-day directory: %v", err)
	}
}

func TestSaveSanitizesFilename(t *testing.T) {
	a := openTest(t)
	for in, want := range map[string]string{"../../etc/passwd": "passwd", "": "export"} {
		e, err := a.Save(in, "", "", []byte("x"))
		if err != nil {
			t.Fatalf("Save(%q) returned error: %v", in, err)
		}
		if e.Filename != want {
			t.Fatalf("Save(%q).Filename = %q, want %q", in, e.Filename, want)
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	a := openTest(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first.csv", "second.csv", "third.csv"} {
		stamp := base.Add(time.Duration(i) * time.Hour)
		a.now = func() time.Time { return stamp }
		if _, err := a.Save(name, "text/csv", "", []byte(name)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	list, err := a.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(list))
	}
	if list[0].Filename != "third.csv" || list[2].Filename != "first.csv" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestDelete(t *testing.T) {
	a := openTest(t)
	e, err := a.Save("x.csv", "", "", []byte("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := a.Delete(e.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, _, err := a.Get(e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := a.Delete(e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestListEmpty(t *testing.T) {
	list, err := openTest(t).List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

func TestListSkipsCorruptMeta(t *testing.T) {
	a := openTest(t)
	a.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	good, err := a.Save("good.csv", "text/csv", "", []byte("ok"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	a.now = func() time.Time { return time.Date(2026, 2, 4, 4, 5, 6, 0, time.UTC) }
	bad, err := a.Save("bad.csv", "text/csv", "", []byte("ok"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	metaPath := filepath.Join(a.BasePath(), bad.ID[:8], bad.ID+metaSuffix)
	if err := os.WriteFile(metaPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var logs bytes.Buffer
	reopened, err := Open(a.BasePath(), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	list, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != good.ID {
		t.Fatalf("List = %+v, want only %s", list, good.ID)
	}
	if !strings.Contains(logs.String(), bad.ID) {
		t.Fatalf("log output = %q, want it to name %s", logs.String(), bad.ID)
	}
}

func TestListCanceledContext(t *testing.T) {
	a := openTest(t)
	for i := 0; i < 3; i++ {
		if _, err := a.Save("x.csv", "", "", []byte("x")); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("List error = %v, want context.Canceled", err)
	}
}

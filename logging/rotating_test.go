package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giygas/pharmacy-api/config"
	"github.com/go-chi/chi/v5/middleware"
)

func TestGetWeekKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "2026-W43"},
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
	}
	for _, tt := range tests {
		if got := getWeekKey(tt.date); got != tt.want {
			t.Errorf("getWeekKey(%s) = %s, want %s", tt.date.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestRotatingLoggerWritesWeeklyFile(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 0)
	rl.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }
	defer rl.Close()

	if _, err := rl.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pharmacy-2026-W43.log"))
	if err != nil {
		t.Fatalf("expected weekly log file: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("log content = %q", data)
	}
}

func TestRotatingLoggerRotatesOnWeekChange(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	rl := NewRotatingLogger(dir, 1, 0)
	rl.now = func() time.Time { return day }
	defer rl.Close()

	_, _ = rl.Write([]byte("week 43\n"))
	day = day.AddDate(0, 0, 7)
	_, _ = rl.Write([]byte("week 44\n"))

	for _, name := range []string{"pharmacy-2026-W43.log", "pharmacy-2026-W44.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRotatingLoggerRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 10)
	rl.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if _, err := rl.Write([]byte("12345678\n")); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}

	for _, name := range []string{"pharmacy-2026-W43.log", "pharmacy-2026-W43_01.log", "pharmacy-2026-W43_02.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 0)
	defer rl.Close()

	old := filepath.Join(dir, "pharmacy-2020-W01.log")
	fresh := filepath.Join(dir, "pharmacy-2026-W43.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(other, past, past); err != nil {
		t.Fatal(err)
	}

	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("cleanupOldLogs() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log should be removed")
	}
	for _, p := range []string{fresh, other} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should be kept: %v", p, err)
		}
	}
}

func TestSetupLoggerWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, rotating := SetupLogger(Options{
		LogDir:  dir,
		Env:     config.EnvDevelopment,
		Console: &console,
	})
	if rotating == nil {
		t.Fatal("expected a rotating logger")
	}
	defer rotating.Close()

	logger.Info("stock saved", "medicines", 3)
	logger.Debug("file only")

	if !strings.Contains(console.String(), "stock saved") {
		t.Errorf("console output = %q", console.String())
	}
	if strings.Contains(console.String(), "file only") {
		t.Error("debug record should not reach the info console")
	}

	data, err := os.ReadFile(rotating.currentFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"stock saved"`) || !strings.Contains(string(data), `"msg":"file only"`) {
		t.Errorf("file output = %s", data)
	}
}

func TestSetupLoggerConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, rotating := SetupLogger(Options{Console: &console})
	if rotating != nil {
		t.Error("no log dir should mean no rotating logger")
	}
	logger.Info("hello")
	if !strings.Contains(console.String(), "hello") {
		t.Errorf("console output = %q", console.String())
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := SetupLogger(Options{Console: &buf, Env: config.EnvDevelopment})

	handler := middleware.RequestID(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/orders?source=test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	out := buf.String()
	for _, want := range []string{"HTTP request", "method=POST", "path=/orders", "query=source=test", "status_code=201", "bytes_written=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if buf.Len() != 0 {
		t.Errorf("health requests should not be logged, got %q", buf.String())
	}
}

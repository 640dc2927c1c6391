package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/redsalamander/folderview/config"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l := &Logger{Logger: logrus.New()}
	cfg := &config.LoggingConfig{Level: "debug", ToFile: false}
	if err := l.Init(cfg, t.TempDir()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	l.SetOutput(os.Stderr)
	return l
}

func TestInitInstallsBufferedTail(t *testing.T) {
	l := newTestLogger(t)

	l.Enumeration("folder=%q items=%d", "/x", 3)
	l.Warnf("something odd")

	tail := l.Tail()
	if len(tail) < 2 {
		t.Fatalf("tail holds %d entries, want >= 2", len(tail))
	}
	last := tail[len(tail)-1]
	if last.Level != "warning" || last.Message != "something odd" {
		t.Fatalf("last entry = %+v, want the warning", last)
	}
}

func TestTailWrapsAtCapacity(t *testing.T) {
	l := newTestLogger(t)

	for i := 0; i < tailCapacity+10; i++ {
		l.Infof("entry %d", i)
	}

	tail := l.Tail()
	if len(tail) != tailCapacity {
		t.Fatalf("tail holds %d entries, want capacity %d", len(tail), tailCapacity)
	}
	if tail[0].Message == "entry 0" {
		t.Fatal("oldest entries were not evicted")
	}
}

func TestExportLogsWritesTail(t *testing.T) {
	l := newTestLogger(t)
	l.Info("first line")
	l.Info("second line")

	path := filepath.Join(t.TempDir(), "export.txt")
	if err := l.ExportLogs(path); err != nil {
		t.Fatalf("ExportLogs: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "first line") || !strings.Contains(text, "second line") {
		t.Fatalf("export missing entries:\n%s", text)
	}
}

func TestLogBufferFilterAndClear(t *testing.T) {
	b := NewLogBuffer(8)
	b.Add("info", "a")
	b.Add("error", "b")
	b.Add("info", "c")

	errs := b.GetFiltered("error")
	if len(errs) != 1 || errs[0].Message != "b" {
		t.Fatalf("filtered = %+v, want the single error entry", errs)
	}

	b.Clear()
	if got := b.GetAll(); got != nil {
		t.Fatalf("GetAll after Clear = %+v, want nil", got)
	}
}

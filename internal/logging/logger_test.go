package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luki/tempwatch/internal/config"
)

func TestNewDev(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.Config{AppEnv: "dev", LogLevel: slog.LevelInfo}, "dev", "tempwatch", false)

	logger.Info("fetched latest", "temperature", 23.4)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "fetched latest") || !strings.Contains(out, "temperature=23.4") {
		t.Errorf("unexpected dev output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug line should be filtered at info level")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("NoColor output should not contain escape codes")
	}
}

func TestNewProd(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.0", "tempwatch", false)

	logger.Warn("hourly fetch failed", "err", "timeout")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("prod output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "hourly fetch failed" || rec["version"] != "1.2.0" || rec["env"] != "prod" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestOpenWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempwatch.log")
	logger, closer, err := Open(config.Config{AppEnv: "dev", LogLevel: slog.LevelInfo, LogFile: path}, "dev", "tempwatch")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Info("started")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "started") {
		t.Errorf("log file missing entry: %q", data)
	}
}

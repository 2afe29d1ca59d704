package serve

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wirescope/wirescope/internal/config"
)

func TestRun(t *testing.T) {
	frontend := t.TempDir()
	if err := os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<html></html>"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Host:           "127.0.0.1",
		Port:           0,
		FrontendPath:   frontend,
		KVStore:        "memory",
		KVStorePath:    t.TempDir(),
		RateLimitBurst: 1,
	}
	sigs := make(chan os.Signal, 1)
	srvAddr := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- run(cfg, sigs, srvAddr)
	}()
	addr := <-srvAddr

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var health map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatal(err)
		}
		expect := map[string]any{"status": "ok", "proxyEnabled": true}
		if diff := cmp.Diff(expect, health); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("web UI", func(t *testing.T) {
		resp, err := http.Get("http://" + addr + "/settings")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "<html></html>" {
			t.Fatal("unexpected body", string(data))
		}
	})

	sigs <- syscall.SIGTERM
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestRunWithInvalidStore(t *testing.T) {
	cfg := &config.Config{
		Host:    "127.0.0.1",
		KVStore: "redis",
	}
	if err := run(cfg, make(chan os.Signal), nil); err == nil {
		t.Fatal("expected an error")
	}
}

func TestOverrideString(t *testing.T) {
	value := "env"
	overrideString(&value, "")
	if value != "env" {
		t.Fatal("unexpected value", value)
	}
	overrideString(&value, "flag")
	if value != "flag" {
		t.Fatal("unexpected value", value)
	}
}

package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFS_SendContentAndDelete(t *testing.T) {
	tempDir := t.TempDir()

	client, err := NewClient(&Config{SavePath: tempDir, CustomPath: "site-text"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	savedPath, err := client.SendContent(context.Background(), "2024/backup.json", []byte(`{"ok":true}`), "application/json")
	if err != nil {
		t.Fatalf("SendContent failed: %v", err)
	}

	want := filepath.Join(tempDir, "site-text", "2024", "backup.json")
	if savedPath != want {
		t.Errorf("saved path = %s, want %s", savedPath, want)
	}

	data, err := os.ReadFile(savedPath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Content mismatch: got %s", data)
	}

	if err := client.Delete(context.Background(), "2024/backup.json"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(savedPath); !os.IsNotExist(err) {
		t.Errorf("file still exists after Delete")
	}

	// 删除不存在的文件不报错
	if err := client.Delete(context.Background(), "missing.json"); err != nil {
		t.Errorf("Delete of missing file returned %v", err)
	}
}

func TestLocalFS_KeyCannotEscapeRoot(t *testing.T) {
	tempDir := t.TempDir()
	client, _ := NewClient(&Config{SavePath: tempDir})

	savedPath, err := client.SendContent(context.Background(), "../../escape.json", []byte("x"), "text/plain")
	if err != nil {
		t.Fatalf("SendContent failed: %v", err)
	}
	if filepath.Dir(savedPath) != tempDir {
		t.Errorf("saved outside root: %s", savedPath)
	}
}

func TestNewClient_RequiresSavePath(t *testing.T) {
	if _, err := NewClient(&Config{}); err == nil {
		t.Error("expected error for empty save path")
	}
}

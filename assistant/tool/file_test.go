package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSaveAndReadTool(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	save, err := NewFileSaveTool(dir)
	if err != nil {
		t.Fatalf("NewFileSaveTool failed: %v", err)
	}
	read, err := NewFileReadTool(dir)
	if err != nil {
		t.Fatalf("NewFileReadTool failed: %v", err)
	}

	out, err := save.Call(ctx, map[string]interface{}{
		"path":    "notes/hello.txt",
		"content": "hello world",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if out["bytes"] != len("hello world") {
		t.Errorf("expected bytes = %d, got %v", len("hello world"), out["bytes"])
	}

	// The file exists on disk with the written content.
	data, err := os.ReadFile(filepath.Join(dir, "notes", "hello.txt"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("unexpected file content: %q", data)
	}

	// Read it back through the read tool.
	out, err = read.Call(ctx, map[string]interface{}{"path": "notes/hello.txt"})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out["content"] != "hello world" {
		t.Errorf("expected content = 'hello world', got %v", out["content"])
	}
}

func TestFileListTool(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := NewFileListTool(dir)
	if err != nil {
		t.Fatalf("NewFileListTool failed: %v", err)
	}

	out, err := list.Call(ctx, map[string]interface{}{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	entries, ok := out["entries"].([]string)
	if !ok {
		t.Fatalf("expected []string entries, got %T", out["entries"])
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), entries)
	}

	var sawFile, sawDir bool
	for _, e := range entries {
		switch e {
		case "a.txt":
			sawFile = true
		case "sub/":
			sawDir = true
		}
	}
	if !sawFile {
		t.Error("expected a.txt in listing")
	}
	if !sawDir {
		t.Error("expected sub/ in listing with trailing slash")
	}
}

func TestFileTools_RejectEscapingPaths(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	read, _ := NewFileReadTool(dir)
	save, _ := NewFileSaveTool(dir)
	list, _ := NewFileListTool(dir)

	escaping := "../outside.txt"

	if _, err := read.Call(ctx, map[string]interface{}{"path": escaping}); err == nil {
		t.Error("expected read of escaping path to fail")
	}
	if _, err := save.Call(ctx, map[string]interface{}{"path": escaping, "content": "x"}); err == nil {
		t.Error("expected save to escaping path to fail")
	}
	if _, err := list.Call(ctx, map[string]interface{}{"path": ".."}); err == nil {
		t.Error("expected list of escaping path to fail")
	}
}

func TestFileReadTool_MissingArguments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	read, _ := NewFileReadTool(dir)
	if _, err := read.Call(ctx, map[string]interface{}{}); err == nil {
		t.Error("expected error for missing path")
	}

	save, _ := NewFileSaveTool(dir)
	if _, err := save.Call(ctx, map[string]interface{}{"path": "x.txt"}); err == nil {
		t.Error("expected error for missing content")
	}
}

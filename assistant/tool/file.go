package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileReadTool reads files inside a base directory.
//
// Paths are resolved relative to the base directory and requests that
// escape it are rejected.
//
// Input Parameters:
//   - path: File path relative to the base directory (required)
//
// Output:
//   - content: File contents as string
//   - path: Resolved relative path
type FileReadTool struct {
	base string
}

// NewFileReadTool creates a file reader confined to baseDir.
func NewFileReadTool(baseDir string) (*FileReadTool, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	return &FileReadTool{base: abs}, nil
}

// Name returns the tool identifier.
func (f *FileReadTool) Name() string {
	return "read_file"
}

// Description tells the model what the tool does.
func (f *FileReadTool) Description() string {
	return "Read a text file from the working directory and return its contents."
}

// Schema returns the input parameter schema.
func (f *FileReadTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File path relative to the working directory",
			},
		},
		"required": []string{"path"},
	}
}

// Call reads the requested file.
func (f *FileReadTool) Call(_ context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	rel, ok := input["path"].(string)
	if !ok || rel == "" {
		return nil, fmt.Errorf("path parameter required (string)")
	}

	full, err := f.resolve(rel)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return map[string]interface{}{
		"content": string(data),
		"path":    rel,
	}, nil
}

func (f *FileReadTool) resolve(rel string) (string, error) {
	full := filepath.Join(f.base, rel)
	full = filepath.Clean(full)
	if full != f.base && !strings.HasPrefix(full, f.base+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes working directory: %s", rel)
	}
	return full, nil
}

// FileSaveTool writes files inside a base directory.
//
// Input Parameters:
//   - path: File path relative to the base directory (required)
//   - content: File contents to write (required)
//
// Output:
//   - path: Resolved relative path
//   - bytes: Number of bytes written
type FileSaveTool struct {
	base string
}

// NewFileSaveTool creates a file writer confined to baseDir.
func NewFileSaveTool(baseDir string) (*FileSaveTool, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	return &FileSaveTool{base: abs}, nil
}

// Name returns the tool identifier.
func (f *FileSaveTool) Name() string {
	return "save_file"
}

// Description tells the model what the tool does.
func (f *FileSaveTool) Description() string {
	return "Write a text file under the working directory, creating parent directories as needed."
}

// Schema returns the input parameter schema.
func (f *FileSaveTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File path relative to the working directory",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Contents to write",
			},
		},
		"required": []string{"path", "content"},
	}
}

// Call writes the requested file.
func (f *FileSaveTool) Call(_ context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	rel, ok := input["path"].(string)
	if !ok || rel == "" {
		return nil, fmt.Errorf("path parameter required (string)")
	}
	content, ok := input["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content parameter required (string)")
	}

	full := filepath.Clean(filepath.Join(f.base, rel))
	if full != f.base && !strings.HasPrefix(full, f.base+string(filepath.Separator)) {
		return nil, fmt.Errorf("path escapes working directory: %s", rel)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return map[string]interface{}{
		"path":  rel,
		"bytes": len(content),
	}, nil
}

// FileListTool lists files inside a base directory.
//
// Input Parameters:
//   - path: Directory path relative to the base directory (optional,
//     defaults to the base directory itself)
//
// Output:
//   - entries: List of file and directory names; directories end with "/"
type FileListTool struct {
	base string
}

// NewFileListTool creates a directory lister confined to baseDir.
func NewFileListTool(baseDir string) (*FileListTool, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	return &FileListTool{base: abs}, nil
}

// Name returns the tool identifier.
func (f *FileListTool) Name() string {
	return "list_files"
}

// Description tells the model what the tool does.
func (f *FileListTool) Description() string {
	return "List the files in a directory under the working directory."
}

// Schema returns the input parameter schema.
func (f *FileListTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory path relative to the working directory. Defaults to the root.",
			},
		},
	}
}

// Call lists the requested directory.
func (f *FileListTool) Call(_ context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	rel := "."
	if p, ok := input["path"].(string); ok && p != "" {
		rel = p
	}

	full := filepath.Clean(filepath.Join(f.base, rel))
	if full != f.base && !strings.HasPrefix(full, f.base+string(filepath.Separator)) {
		return nil, fmt.Errorf("path escapes working directory: %s", rel)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}

	return map[string]interface{}{"entries": names}, nil
}

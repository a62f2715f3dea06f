package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const maxReadSize = 256 * 1024

// resolvePath confines a tool path to the working directory. Relative paths
// resolve against workDir; anything escaping it is rejected.
func resolvePath(workDir, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	path = filepath.Clean(path)

	root := filepath.Clean(workDir)
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the working directory", path)
	}
	return path, nil
}

// ReadFileTool returns file contents.
type ReadFileTool struct {
	workDir string
}

func NewReadFileTool(workDir string) *ReadFileTool { return &ReadFileTool{workDir: workDir} }

func (t *ReadFileTool) ID() string { return "read_file" }
func (t *ReadFileTool) Description() string {
	return "Reads a file from the working directory and returns its contents."
}

func (t *ReadFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "File path, relative to the working directory"
			}
		},
		"required": ["path"]
	}`)
}

func (t *ReadFileTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	path, err := resolvePath(t.workDir, params.Path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxReadSize {
		return nil, fmt.Errorf("file %s is too large (%d bytes)", params.Path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Result{
		Title:  "Read " + params.Path,
		Output: string(data),
	}, nil
}

// WriteFileTool writes file contents, creating parent directories.
type WriteFileTool struct {
	workDir string
}

func NewWriteFileTool(workDir string) *WriteFileTool { return &WriteFileTool{workDir: workDir} }

func (t *WriteFileTool) ID() string { return "write_file" }
func (t *WriteFileTool) Description() string {
	return "Writes content to a file in the working directory, overwriting it if it exists."
}

func (t *WriteFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "File path, relative to the working directory"
			},
			"content": {
				"type": "string",
				"description": "The content to write"
			}
		},
		"required": ["path", "content"]
	}`)
}

func (t *WriteFileTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	path, err := resolvePath(t.workDir, params.Path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(params.Content), 0o644); err != nil {
		return nil, err
	}

	return &Result{
		Title:      "Write " + params.Path,
		Output:     fmt.Sprintf("wrote %d bytes to %s", len(params.Content), params.Path),
		Mechanical: true,
	}, nil
}

// ListFilesTool enumerates a directory.
type ListFilesTool struct {
	workDir string
}

func NewListFilesTool(workDir string) *ListFilesTool { return &ListFilesTool{workDir: workDir} }

func (t *ListFilesTool) ID() string { return "list_files" }
func (t *ListFilesTool) Description() string {
	return "Lists the entries of a directory in the working directory. Directories are suffixed with /."
}

func (t *ListFilesTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Directory path, relative to the working directory. Defaults to the working directory itself."
			}
		},
		"required": []
	}`)
}

func (t *ListFilesTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if params.Path == "" {
		params.Path = "."
	}

	path, err := resolvePath(t.workDir, params.Path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return &Result{
		Title:  "List " + params.Path,
		Output: strings.Join(names, "\n"),
	}, nil
}

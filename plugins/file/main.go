// The file plugin exposes filesystem read and write over the subprocess
// action protocol.
package main

import (
	"os"
	"path/filepath"

	"github.com/mattjoyce/sprocket/internal/log"
	"github.com/mattjoyce/sprocket/internal/protocol"
	"github.com/mattjoyce/sprocket/internal/sdk"
)

func main() {
	log.Setup(os.Getenv("SPROCKET_LOG_LEVEL"))
	newPlugin().Main()
}

func newPlugin() *sdk.Plugin {
	p := sdk.New(protocol.Metadata{
		Name:        "file",
		Version:     "1.0.0",
		Description: "File system operations (read, write)",
		Author:      "Sprocket Team",
		Tags:        []string{"file", "filesystem", "io"},
	})

	p.Register("read", protocol.ActionSpec{
		Description: "Read file contents",
		Inputs: map[string]protocol.ParamSpec{
			"path": {Type: protocol.TypeString, Required: true, Description: "File path to read"},
		},
		Outputs: map[string]protocol.ParamSpec{
			"content": {Type: protocol.TypeString, Description: "File contents"},
		},
	}, handleRead)

	p.Register("write", protocol.ActionSpec{
		Description: "Write content to file",
		Inputs: map[string]protocol.ParamSpec{
			"path":        {Type: protocol.TypeString, Required: true, Description: "File path to write"},
			"content":     {Type: protocol.TypeString, Description: "Content to write"},
			"create_dirs": {Type: protocol.TypeBoolean, Default: false, Description: "Create parent directories if needed"},
		},
		Outputs: map[string]protocol.ParamSpec{
			"success": {Type: protocol.TypeBoolean, Description: "Write operation success"},
		},
	}, handleWrite)

	return p
}

func handleRead(params sdk.Params) (protocol.Result, error) {
	path, err := params.String("path")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return protocol.Result{"content": string(data)}, nil
}

// writeRequest is the typed shape of the write action's inputs.
type writeRequest struct {
	path       string
	content    string
	createDirs bool
}

func handleWrite(params sdk.Params) (protocol.Result, error) {
	path, err := params.String("path")
	if err != nil {
		return nil, err
	}
	req := writeRequest{
		path:       path,
		content:    params.StringDefault("content", ""),
		createDirs: params.BoolDefault("create_dirs", false),
	}

	if req.createDirs {
		if dir := filepath.Dir(req.path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}

	if err := os.WriteFile(req.path, []byte(req.content), 0o644); err != nil {
		return nil, err
	}

	return protocol.Result{"success": true}, nil
}

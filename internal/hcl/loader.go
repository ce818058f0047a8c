package hcl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/xodrun/internal/config"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL program loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found at paths, in lexical order per directory,
// and merges them into one program. Declaration order across files is kept.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Program, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl program files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	prog := &config.Program{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, c := range root.Constants {
			constant, err := translateConstant(file, c)
			if err != nil {
				return nil, err
			}
			prog.Constants = append(prog.Constants, constant)
		}
		for _, n := range root.Nodes {
			nd, err := translateNode(ctx, file, n)
			if err != nil {
				return nil, err
			}
			prog.Nodes = append(prog.Nodes, nd)
		}
	}

	logger.Debug("HCL loading complete.", "constants", len(prog.Constants), "nodes", len(prog.Nodes))
	return prog, nil
}

// findHCLFiles walks all given paths and returns a flat list of .hcl files.
// Directory contents come back in lexical order; explicit files keep the
// order they were given in.
func findHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return all, nil
}

package provider

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/drshade/linguist/internal/types"
)

// FakeRoot is the base path of a FakeProvider
const FakeRoot = "/"

// FakeProvider implements the Provider interface in memory for testing.
// Paths are slash separated and rooted at FakeRoot.
type FakeProvider struct {
	dirs    map[string]map[string]types.File
	content map[string][]byte
}

// NewFakeProvider creates a new fake provider
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		dirs:    map[string]map[string]types.File{FakeRoot: {}},
		content: make(map[string][]byte),
	}
}

// AddFile adds a file, creating its parent directories
func (p *FakeProvider) AddFile(name, content string) {
	full := p.full(name)
	p.AddDir(path.Dir(full))
	p.dirs[path.Dir(full)][path.Base(full)] = types.File{
		Name: path.Base(full),
		Path: full,
		Type: types.FileTypeFile,
		Size: int64(len(content)),
	}
	p.content[full] = []byte(content)
}

// AddDir adds a directory and its parents
func (p *FakeProvider) AddDir(name string) {
	full := p.full(name)
	for full != FakeRoot {
		if _, ok := p.dirs[full]; !ok {
			p.dirs[full] = make(map[string]types.File)
		}
		parent := path.Dir(full)
		if _, ok := p.dirs[parent]; !ok {
			p.dirs[parent] = make(map[string]types.File)
		}
		p.dirs[parent][path.Base(full)] = types.File{
			Name: path.Base(full),
			Path: full,
			Type: types.FileTypeDir,
		}
		full = parent
	}
}

// ListDir returns the contents of a directory, sorted by name
func (p *FakeProvider) ListDir(name string) ([]types.File, error) {
	entries, ok := p.dirs[p.full(name)]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", name, fs.ErrNotExist)
	}
	files := make([]types.File, 0, len(entries))
	for _, f := range entries {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ReadHead returns at most limit bytes of a file
func (p *FakeProvider) ReadHead(name string, limit int) ([]byte, error) {
	content, ok := p.content[p.full(name)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
	}
	if len(content) > limit {
		content = content[:limit]
	}
	return append([]byte(nil), content...), nil
}

// Exists checks if a file or directory exists
func (p *FakeProvider) Exists(name string) (bool, error) {
	full := p.full(name)
	_, fileExists := p.content[full]
	_, dirExists := p.dirs[full]
	return fileExists || dirExists, nil
}

// IsDir checks if a path is a directory
func (p *FakeProvider) IsDir(name string) (bool, error) {
	_, exists := p.dirs[p.full(name)]
	return exists, nil
}

// GetBasePath returns FakeRoot
func (p *FakeProvider) GetBasePath() string {
	return FakeRoot
}

func (p *FakeProvider) full(name string) string {
	return path.Join(FakeRoot, name)
}

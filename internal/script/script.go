package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
)

// TransformFunc is the global every script must define.
const TransformFunc = "transform"

// Script is a loaded Lua text tool.
type Script struct {
	Path        string
	Slug        string
	Name        string
	Description string

	state *State
}

// Load reads and runs the script at path, then checks that it defines
// transform.
func Load(path string, opts ...StateOption) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return load(path, slug, string(src), opts...)
}

// LoadString compiles a script from source. Slug names the resulting tool.
func LoadString(slug, src string, opts ...StateOption) (*Script, error) {
	return load("", slug, src, opts...)
}

func load(path, slug, src string, opts ...StateOption) (*Script, error) {
	state := NewState(opts...)
	if err := state.DoString(src); err != nil {
		state.Close()
		return nil, fmt.Errorf("script %s: %w", slug, err)
	}

	s := &Script{
		Path:        path,
		Slug:        slug,
		Name:        state.GlobalString("name"),
		Description: state.GlobalString("description"),
		state:       state,
	}
	if s.Name == "" {
		s.Name = slug
	}

	if !state.HasFunction(TransformFunc) {
		state.Close()
		return nil, fmt.Errorf("script %s: %w", slug, ErrNoTransform)
	}
	return s, nil
}

// Transform runs the script's transform function on input.
func (s *Script) Transform(input string) (string, error) {
	out, err := s.state.CallString(TransformFunc, input)
	if err != nil {
		return "", fmt.Errorf("script %s: %w", s.Slug, err)
	}
	return out, nil
}

// Info returns the tool metadata for the script.
func (s *Script) Info() tool.Info {
	desc := s.Description
	if desc == "" {
		desc = "Lua script " + filepath.Base(s.Path)
	}
	return tool.Info{
		ID:          tool.Custom,
		Slug:        s.Slug,
		Name:        s.Name,
		Category:    tool.CategoryScript,
		Tags:        []string{"script"},
		Description: desc,
	}
}

// Close releases the script's Lua state.
func (s *Script) Close() {
	s.state.Close()
}

// LoadDir loads every *.lua file in dir and registers it with reg.
// Scripts that fail to load or collide with an existing slug are logged
// and skipped; the returned error joins those failures. A missing dir is
// not an error.
func LoadDir(dir string, reg *tool.Registry, logger zerolog.Logger, opts ...StateOption) ([]*Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading scripts dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".lua") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		loaded []*Script
		errs   []error
	)
	for _, name := range names {
		path := filepath.Join(dir, name)
		s, err := Load(path, opts...)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping script")
			errs = append(errs, err)
			continue
		}
		if err := reg.Register(s.Info(), s.Transform); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping script")
			s.Close()
			errs = append(errs, err)
			continue
		}
		logger.Debug().Str("slug", s.Slug).Str("path", path).Msg("script loaded")
		loaded = append(loaded, s)
	}
	return loaded, errors.Join(errs...)
}

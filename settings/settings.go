// Package settings keeps per user application preferences which live outside
// of any project.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	simplejson "github.com/bitly/go-simplejson"
)

const (
	dirName  = "Scout"
	fileName = "config.json"

	keyLastProject = "lastProjectPath"
	keyFontFamily  = "fontFamily"
)

// Settings are user preferences. Zero value means nothing was recorded yet.
type Settings struct {
	LastProjectPath string
	FontFamily      string
}

// Store persists Settings.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
}

// DefaultPath returns location of settings file in user configuration
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to locate user configuration directory: %w", err)
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// FileStore keeps settings as JSON file. Keys it does not know about are
// preserved when saving.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (*simplejson.Json, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return simplejson.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read settings: %w", err)
	}
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse settings %q: %w", s.path, err)
	}
	if _, err := js.Map(); err != nil {
		return nil, fmt.Errorf("unable to parse settings %q: not an object", s.path)
	}
	return js, nil
}

// Load returns zero Settings when file does not exist.
func (s *FileStore) Load() (Settings, error) {
	js, err := s.read()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		LastProjectPath: js.Get(keyLastProject).MustString(),
		FontFamily:      js.Get(keyFontFamily).MustString(),
	}, nil
}

func (s *FileStore) Save(st Settings) error {
	js, err := s.read()
	if err != nil {
		return err
	}
	setOrDelete(js, keyLastProject, st.LastProjectPath)
	setOrDelete(js, keyFontFamily, st.FontFamily)

	data, err := js.EncodePretty()
	if err != nil {
		return fmt.Errorf("unable to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("unable to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("unable to write settings: %w", err)
	}
	return nil
}

func setOrDelete(js *simplejson.Json, key, value string) {
	if value == "" {
		js.Del(key)
		return
	}
	js.Set(key, value)
}

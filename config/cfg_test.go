package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if !cfg.Document.FixZip {
		t.Error("FixZip should be on by default")
	}
	if cfg.Document.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Document.Language)
	}
	if cfg.Document.Identifier != IDSchemeHash {
		t.Errorf("Identifier = %v, want hash", cfg.Document.Identifier)
	}
	if cfg.Document.Images.MaxWidth != 0 || cfg.Document.Images.JPEGQuality != 85 {
		t.Errorf("Images = %+v", cfg.Document.Images)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !strings.HasSuffix(cfg.Reporting.Destination, "scout-report.zip") {
		t.Errorf("Reporting destination = %q", cfg.Reporting.Destination)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `version: 1
document:
  fix_zip: false
  file_name_transliterate: true
  language: ru
  identifier: uuid
  images:
    max_width: 1200
    jpeg_quality_level: 70
logging:
  file:
    level: debug
    destination: `+filepath.Join(dir, "test.log")+`
    mode: append
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	d := cfg.Document
	if d.FixZip || !d.FileNameTransliterate {
		t.Errorf("FixZip = %v, FileNameTransliterate = %v", d.FixZip, d.FileNameTransliterate)
	}
	if d.Language != "ru" || d.Identifier != IDSchemeUuid {
		t.Errorf("Language = %q, Identifier = %v", d.Language, d.Identifier)
	}
	if d.Images.MaxWidth != 1200 || d.Images.JPEGQuality != 70 {
		t.Errorf("Images = %+v", d.Images)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("file logger mode = %q", cfg.Logging.FileLogger.Mode)
	}
	// values absent from the file come from template
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q, want default", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{"invalid yaml", "version: 1\ndocument:\n  fix_zip: true\n  invalid indent\n", "decode"},
		{"unknown field", "version: 1\ndocument:\n  use_broken: true\n", "use_broken"},
		{"wrong version", "version: 2\n", "validate"},
		{"quality too low", "version: 1\ndocument:\n  images:\n    jpeg_quality_level: 10\n", "JPEGQuality"},
		{"negative width", "version: 1\ndocument:\n  images:\n    max_width: -1\n", "MaxWidth"},
		{"bad language", "version: 1\ndocument:\n  language: \"not a language!\"\n", "Language"},
		{"bad identifier", "version: 1\ndocument:\n  identifier: isbn\n", "identifier scheme"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n", "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error %q does not mention %q", err, tt.wantIn)
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validate") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestUnmarshalConfig_NoProcessing(t *testing.T) {
	cfg, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, false)
	if err != nil {
		t.Fatalf("unmarshalConfig() without processing error = %v", err)
	}
	if cfg.Version != 99 {
		t.Errorf("Version = %d, want 99", cfg.Version)
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "jpeg_quality_level") {
		t.Errorf("Prepare() output misses document section:\n%s", data)
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"identifier: hash", "language: en", "fix_zip: true"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Dump() output misses %q:\n%s", want, out)
		}
	}

	// dumped configuration must load back
	back, err := LoadConfiguration(writeConfig(t, string(out)))
	if err != nil {
		t.Fatalf("loading dumped configuration: %v", err)
	}
	if back.Document != cfg.Document {
		t.Errorf("Document after reload = %+v, want %+v", back.Document, cfg.Document)
	}
}

func TestOutputFmt(t *testing.T) {
	tests := []struct {
		name string
		fmt  OutputFmt
		ext  string
	}{
		{"rtf", OutputFmtRtf, ".rtf"},
		{"epub", OutputFmtEpub, ".epub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fmt.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.fmt.Ext(); got != tt.ext {
				t.Errorf("Ext() = %q, want %q", got, tt.ext)
			}
			parsed, err := ParseOutputFmt(strings.ToUpper(tt.name))
			if err != nil || parsed != tt.fmt {
				t.Errorf("ParseOutputFmt(%q) = %v, %v", strings.ToUpper(tt.name), parsed, err)
			}
			text, err := tt.fmt.MarshalText()
			if err != nil || string(text) != tt.name {
				t.Errorf("MarshalText() = %q, %v", text, err)
			}
			var back OutputFmt
			if err := back.UnmarshalText(text); err != nil || back != tt.fmt {
				t.Errorf("UnmarshalText(%q) = %v, %v", text, back, err)
			}
		})
	}

	if _, err := ParseOutputFmt("kfx"); err == nil {
		t.Error("ParseOutputFmt(kfx) should fail")
	}
	if OutputFmt(7).IsValid() || OutputFmt(7).String() != "OutputFmt(7)" {
		t.Error("OutputFmt(7) should be invalid")
	}
	if names := OutputFmtNames(); len(names) != 2 || names[0] != "rtf" || names[1] != "epub" {
		t.Errorf("OutputFmtNames() = %v", names)
	}
}

func TestOutputFmt_ExtPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Ext() should panic for invalid format")
		}
	}()
	OutputFmt(99).Ext()
}

func TestIDScheme(t *testing.T) {
	for _, s := range []IDScheme{IDSchemeHash, IDSchemeUuid} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back IDScheme
		if err := back.UnmarshalText(text); err != nil || back != s {
			t.Errorf("round trip of %v = %v, %v", s, back, err)
		}
	}
	if _, err := ParseIDScheme("isbn"); err == nil {
		t.Error("ParseIDScheme(isbn) should fail")
	}
	if IDScheme(-1).IsValid() {
		t.Error("IDScheme(-1) should be invalid")
	}
}

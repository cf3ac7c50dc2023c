package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	cases := map[string]string{
		DefaultConfigPath():       "/cfg/keytutor/config.toml",
		DefaultLessonsDir():       "/cfg/keytutor/lessons",
		DefaultLayoutsDir():       "/cfg/keytutor/layouts",
		DefaultWordListPath("de"): "/cfg/keytutor/wordlists/de.txt",
		DefaultDBPath():           "/data/keytutor/keytutor.db",
		DefaultLogPath():          "/data/keytutor/keytutor.log",
	}
	for got, want := range cases {
		if got != filepath.FromSlash(want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Practice.Module != nil || cfg.Log.Level != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[practice]
module = "german"
segment-length = 40
caps = 0.25
focus-weak = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.Practice.Module != "german" || *cfg.Practice.SegmentLength != 40 || *cfg.Practice.CapsPct != 0.25 || !*cfg.Practice.FocusWeak {
		t.Fatalf("unexpected practice config: %+v", cfg.Practice)
	}
	if cfg.Practice.Lesson != nil {
		t.Fatalf("unset keys must stay nil")
	}
	if *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level %q", *cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nmodul = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.modul") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestApplyPrecedence(t *testing.T) {
	fileModule := "from-file"
	fileWords := 10
	fileCaps := 0.1

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	module := flags.String("module", "default", "")
	words := flags.Int("words", 25, "")
	caps := flags.Float64("caps", 0.5, "")
	weak := flags.Bool("focus-weak", false, "")
	if err := flags.Parse([]string{"--module", "from-flag"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	t.Setenv("KEYTUTOR_WORDS", "40")
	t.Setenv("KEYTUTOR_FOCUS_WEAK", "true")
	env := NewEnv()

	Apply(flags, env, "module", module, &fileModule)
	Apply(flags, env, "words", words, &fileWords)
	Apply(flags, env, "caps", caps, &fileCaps)
	Apply(flags, env, "focus-weak", weak, nil)

	if *module != "from-flag" {
		t.Fatalf("flag must win, got %q", *module)
	}
	if *words != 40 {
		t.Fatalf("env must beat file, got %d", *words)
	}
	if *caps != 0.1 {
		t.Fatalf("file must beat default, got %v", *caps)
	}
	if !*weak {
		t.Fatalf("env must apply without a file value")
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/keyline/internal/history"
	"github.com/dshills/keyline/internal/term"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Mode != ModeEmacs {
		t.Errorf("Mode = %q, want emacs", s.Mode)
	}
	if s.HistoryCapacity != history.DefaultCapacity {
		t.Errorf("HistoryCapacity = %d", s.HistoryCapacity)
	}
	if s.Bell != BellAudible {
		t.Errorf("Bell = %q", s.Bell)
	}
}

func TestLoadFullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	doc := `{
		"mode": "vi",
		"history": {"path": "/tmp/h", "capacity": 50, "save": "incremental", "dedup": true},
		"bell": "visible",
		"killring": {"size": 20},
		"colors": {"prompt": "blue", "status": "#808080"},
		"bindings": [
			{"table": "emacs", "keys": "C-t", "action": "transpose-chars"},
			{"keys": "C-x C-u", "action": "upcase-word"}
		]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Mode != ModeVi {
		t.Errorf("Mode = %q", s.Mode)
	}
	if s.HistoryPath != "/tmp/h" || s.HistoryCapacity != 50 {
		t.Errorf("history = %q/%d", s.HistoryPath, s.HistoryCapacity)
	}
	if s.HistorySave != history.SaveIncremental {
		t.Errorf("HistorySave = %v", s.HistorySave)
	}
	if !s.RecallDedup {
		t.Error("RecallDedup false")
	}
	if s.Bell != BellVisible {
		t.Errorf("Bell = %q", s.Bell)
	}
	if s.KillRingSize != 20 {
		t.Errorf("KillRingSize = %d", s.KillRingSize)
	}
	if s.PromptStyle.FG != 4 {
		t.Errorf("prompt FG = %d, want 4", s.PromptStyle.FG)
	}
	if len(s.Bindings) != 2 {
		t.Fatalf("Bindings = %d, want 2", len(s.Bindings))
	}
	if s.Bindings[1].Table != "emacs" {
		t.Errorf("binding table default = %q", s.Bindings[1].Table)
	}
	if s.Bindings[1].Keys != "C-x C-u" {
		t.Errorf("binding keys = %q", s.Bindings[1].Keys)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"mode": "vi"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Mode != ModeVi {
		t.Errorf("Mode = %q", s.Mode)
	}
	if s.HistorySave != history.SaveAtExit {
		t.Errorf("HistorySave = %v, want default", s.HistorySave)
	}
}

func TestLoadBadValuesIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	doc := `{"mode": "vim-but-wrong", "bell": 17, "history": {"capacity": -5}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Mode != ModeEmacs {
		t.Errorf("Mode = %q, want default", s.Mode)
	}
	if s.HistoryCapacity != history.DefaultCapacity {
		t.Errorf("HistoryCapacity = %d, want default", s.HistoryCapacity)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("err = %v, want ErrInvalidJSON", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := Default()
	s.Mode = ModeVi
	s.HistoryCapacity = 123
	s.HistorySave = history.SaveNever
	s.Bindings = []KeyBinding{{Table: "emacs", Keys: "C-t", Action: "transpose-chars"}}

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Mode != ModeVi || got.HistoryCapacity != 123 || got.HistorySave != history.SaveNever {
		t.Errorf("round trip = %+v", got)
	}
	if len(got.Bindings) != 1 || got.Bindings[0].Action != "transpose-chars" {
		t.Errorf("Bindings = %+v", got.Bindings)
	}
}

func TestSavePreservesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"custom": {"x": 1}, "mode": "emacs"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"custom"`) {
		t.Errorf("unknown field dropped: %s", data)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		spec    string
		want    term.Color
		wantErr bool
	}{
		{"red", 1, false},
		{"bright-white", 15, false},
		{"default", term.ColorDefault, false},
		{"", term.ColorDefault, false},
		{"42", 42, false},
		{"256", 0, true},
		{"#000000", 16, false},
		{"#ffffff", 231, false},
		{"nonsense", 0, true},
		{"#zzz", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q) succeeded with %d", tt.spec, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %d, want %d", tt.spec, got, tt.want)
		}
	}
}

func TestParseColorGrayMapsToRamp(t *testing.T) {
	c, err := ParseColor("#0a0a0a")
	if err != nil {
		t.Fatal(err)
	}
	if c < 232 && c != 16 {
		t.Errorf("near-black gray = %d, want grayscale ramp or cube black", c)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"mode": "emacs"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got := make(chan Settings, 1)
	w, err := NewWatcher(path, func(s Settings) {
		select {
		case got <- s:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(`{"mode": "vi"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-got:
		if s.Mode != ModeVi {
			t.Errorf("reloaded Mode = %q, want vi", s.Mode)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path, func(Settings) {})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close = %v, want ErrWatcherClosed", err)
	}
}

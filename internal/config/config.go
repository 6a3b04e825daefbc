package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/keyline/internal/history"
	"github.com/dshills/keyline/internal/term"
)

// ErrInvalidJSON is returned when the settings file is not JSON at
// all. A structurally valid file with wrong-typed fields is not an
// error; those fields keep their defaults.
var ErrInvalidJSON = errors.New("settings file is not valid JSON")

// EditMode selects the binding philosophy.
type EditMode string

const (
	ModeEmacs EditMode = "emacs"
	ModeVi    EditMode = "vi"
)

// BellStyle selects the error cue.
type BellStyle string

const (
	BellAudible BellStyle = "audible"
	BellVisible BellStyle = "visible"
	BellNone    BellStyle = "none"
)

// KeyBinding maps a key spec (and optionally a chord second key) to a
// named action in a named table.
type KeyBinding struct {
	Table  string // "emacs", "vi-insert", "vi-command"
	Keys   string // "C-x", or "C-x C-u" for a chord
	Action string
}

// Settings is the full engine configuration.
type Settings struct {
	Mode            EditMode
	HistoryPath     string
	HistoryCapacity int
	HistorySave     history.SavePolicy
	Bell            BellStyle
	RecallDedup     bool
	KillRingSize    int
	PromptStyle     term.Style
	StatusStyle     term.Style
	Bindings        []KeyBinding
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Mode:            ModeEmacs,
		HistoryPath:     defaultHistoryPath(),
		HistoryCapacity: history.DefaultCapacity,
		HistorySave:     history.SaveAtExit,
		Bell:            BellAudible,
		KillRingSize:    0, // package default
		PromptStyle:     term.Style{FG: term.ColorDefault, BG: term.ColorDefault, Bold: true},
		StatusStyle:     term.Style{FG: term.ColorDefault, BG: term.ColorDefault},
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".keyline_history")
}

// Load reads a settings file, filling defaults for anything the file
// does not define. A missing file yields pure defaults and no error.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if !gjson.ValidBytes(data) {
		return s, fmt.Errorf("%w: %s", ErrInvalidJSON, path)
	}
	applyJSON(&s, data)
	return s, nil
}

func applyJSON(s *Settings, data []byte) {
	if v := gjson.GetBytes(data, "mode"); v.Exists() {
		switch EditMode(v.String()) {
		case ModeEmacs, ModeVi:
			s.Mode = EditMode(v.String())
		}
	}
	if v := gjson.GetBytes(data, "history.path"); v.Exists() {
		s.HistoryPath = v.String()
	}
	if v := gjson.GetBytes(data, "history.capacity"); v.Exists() && v.Int() > 0 {
		s.HistoryCapacity = int(v.Int())
	}
	if v := gjson.GetBytes(data, "history.save"); v.Exists() {
		switch v.String() {
		case "incremental":
			s.HistorySave = history.SaveIncremental
		case "at-exit":
			s.HistorySave = history.SaveAtExit
		case "never":
			s.HistorySave = history.SaveNever
		}
	}
	if v := gjson.GetBytes(data, "history.dedup"); v.Exists() {
		s.RecallDedup = v.Bool()
	}
	if v := gjson.GetBytes(data, "bell"); v.Exists() {
		switch BellStyle(v.String()) {
		case BellAudible, BellVisible, BellNone:
			s.Bell = BellStyle(v.String())
		}
	}
	if v := gjson.GetBytes(data, "killring.size"); v.Exists() && v.Int() > 0 {
		s.KillRingSize = int(v.Int())
	}
	if v := gjson.GetBytes(data, "colors.prompt"); v.Exists() {
		if c, err := ParseColor(v.String()); err == nil {
			s.PromptStyle.FG = c
		}
	}
	if v := gjson.GetBytes(data, "colors.prompt_bold"); v.Exists() {
		s.PromptStyle.Bold = v.Bool()
	}
	if v := gjson.GetBytes(data, "colors.status"); v.Exists() {
		if c, err := ParseColor(v.String()); err == nil {
			s.StatusStyle.FG = c
		}
	}

	gjson.GetBytes(data, "bindings").ForEach(func(_, b gjson.Result) bool {
		kb := KeyBinding{
			Table:  b.Get("table").String(),
			Keys:   b.Get("keys").String(),
			Action: b.Get("action").String(),
		}
		if kb.Keys != "" && kb.Action != "" {
			if kb.Table == "" {
				kb.Table = "emacs"
			}
			s.Bindings = append(s.Bindings, kb)
		}
		return true
	})
}

// Save writes the settings back to path, preserving any unknown
// fields already present in the file.
func Save(path string, s Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		data = []byte("{}")
	}

	set := func(key string, value interface{}) {
		if err != nil {
			return
		}
		data, err = sjson.SetBytes(data, key, value)
	}
	err = nil
	set("mode", string(s.Mode))
	set("history.path", s.HistoryPath)
	set("history.capacity", s.HistoryCapacity)
	set("history.save", savePolicyName(s.HistorySave))
	set("history.dedup", s.RecallDedup)
	set("bell", string(s.Bell))
	if s.KillRingSize > 0 {
		set("killring.size", s.KillRingSize)
	}
	if err != nil {
		return err
	}

	if len(s.Bindings) > 0 {
		data, err = sjson.DeleteBytes(data, "bindings")
		if err != nil {
			return err
		}
		for i, kb := range s.Bindings {
			prefix := fmt.Sprintf("bindings.%d.", i)
			set(prefix+"table", kb.Table)
			set(prefix+"keys", kb.Keys)
			set(prefix+"action", kb.Action)
		}
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return mkErr
		}
	}
	return os.WriteFile(path, data, 0o600)
}

func savePolicyName(p history.SavePolicy) string {
	switch p {
	case history.SaveIncremental:
		return "incremental"
	case history.SaveNever:
		return "never"
	default:
		return "at-exit"
	}
}

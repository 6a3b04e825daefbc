// Package config loads and persists keyline settings.
//
// Settings live in a JSON file: edit mode, history location and save
// policy, bell style, prompt/status colors, and key rebindings. Reads
// go through gjson so a partially valid file still yields every field
// it does define, with defaults filling the rest. Writes go through
// sjson to preserve unknown fields a user may keep in the same file.
//
// A Watcher built on fsnotify reports file changes so a host can
// reapply settings without restarting the engine.
package config

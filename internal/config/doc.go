// Package config loads the ToolView application configuration.
//
// Settings are layered with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command line flags      │  ← Highest priority (applied by app)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← TOOLVIEW_LOG_LEVEL, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/toolview/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// User preferences (theme, currency, clock) are not part of this file;
// they live in their own store, see package prefs.
//
// # Example
//
//	[log]
//	level = "debug"
//	file = "/tmp/toolview.log"
//
//	[history]
//	max_entries = 200
//
//	[scripts]
//	dir = "~/.config/toolview/scripts"
package config

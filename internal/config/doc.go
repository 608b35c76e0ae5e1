// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and live reload for palaver.
//
// Configuration file locations (in order of precedence):
//   - ~/.palaver/config.toml
//   - Built-in defaults
//
// Environment overrides use the PALAVER_ prefix and win over the file.
package config

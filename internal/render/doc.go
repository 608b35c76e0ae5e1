// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render derives display models from domain records.
//
// Everything here is a pure function of its inputs: no store access, no
// side effects, safe to call on every frame. The view layer decides how to
// paint a DisplayModel; this package decides only what it says.
package render

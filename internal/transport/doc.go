// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport defines the abstract collaborator contract between the
// chat core and the remote service, plus an in-process loopback
// implementation used by offline mode and the tests.
//
// The concrete wire schema (HTTP/WebSocket) is intentionally out of scope;
// the core only sees intents going out and typed events coming in.
package transport

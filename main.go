// palaver TUI - a terminal client for two-party language-exchange chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/palaver-tui/internal/capture"
	"github.com/jeranaias/palaver-tui/internal/compose"
	"github.com/jeranaias/palaver-tui/internal/config"
	"github.com/jeranaias/palaver-tui/internal/emoji"
	"github.com/jeranaias/palaver-tui/internal/model"
	"github.com/jeranaias/palaver-tui/internal/session"
	"github.com/jeranaias/palaver-tui/internal/storage"
	"github.com/jeranaias/palaver-tui/internal/store"
	"github.com/jeranaias/palaver-tui/internal/transport"
	"github.com/jeranaias/palaver-tui/internal/ui/chat"
	"github.com/jeranaias/palaver-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// Global program reference for async event delivery
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

// sendToProgram delivers a message from a non-UI goroutine.
func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.palaver/config.toml)")
		offline     = flag.Bool("offline", false, "run against the in-process loopback service")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("palaver %s (%s)\n", Version, GitCommit)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "palaver needs an interactive terminal")
		os.Exit(1)
	}

	// ==========================================================================
	// Configuration
	// ==========================================================================
	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *offline {
		cfg.Service.Offline = true
	}
	if !cfg.Service.Offline {
		// The wire protocol of the hosted service is not public yet; the
		// client ships with the loopback only.
		fmt.Fprintln(os.Stderr, "remote service transport is not available in this build; set service.offline = true or pass --offline")
		os.Exit(1)
	}

	theme := styles.NewTheme(cfg.UI.Theme)

	// ==========================================================================
	// Local cache (emoji recents etc). Failure is non-fatal: the app runs,
	// recents just don't survive restarts.
	// ==========================================================================
	var kv *storage.KV
	cachePath := cfg.Storage.CachePath
	if cachePath != "" {
		kv, err = storage.Open(cachePath)
	} else {
		kv, err = storage.OpenDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cache unavailable: %v\n", err)
		kv = nil
	}
	defer func() {
		if kv != nil {
			kv.Close()
		}
	}()

	var emojiIdx *emoji.Index
	if kv != nil {
		emojiIdx = emoji.NewIndex(kv)
	} else {
		emojiIdx = emoji.NewIndex(nil)
	}

	// ==========================================================================
	// Core collaborators
	// ==========================================================================
	st := store.New(cfg.Viewer.ID)
	tr := transport.NewLoopback(150*time.Millisecond, cfg.Service.EchoPeer)

	typing := compose.NewTypingSignal(cfg.TypingWindow(), func(on bool) {
		convID := st.FocusedID()
		if convID == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		tr.SendTyping(ctx, convID, on)
	})
	composer := compose.New("", "", typing)
	if kv != nil {
		// Bring back the draft a previous run autosaved before it could send.
		if draft, err := kv.Get("session.draft"); err == nil && len(draft) > 0 {
			composer.RestoreDraft(string(draft))
		}
	}

	recorder := capture.NewRecorder(&capture.SilenceMicrophone{}, cfg.MaxRecording())
	recorder.SetCallbacks(
		func(elapsed time.Duration) {
			sendToProgram(chat.RecordTickMsg{Elapsed: elapsed})
		},
		func(clip *capture.Clip) {
			sendToProgram(chat.RecordCappedMsg{Clip: clip})
		},
	)

	sessionMgr := session.NewManager(session.DefaultConfig())
	sessionMgr.SetPresenceCallback(func(away bool) {
		sendToProgram(chat.ViewerAwayMsg{Away: away})
	})
	if kv != nil {
		// Autosave keeps the half-typed draft across crashes.
		sessionMgr.SetAutoSaveCallback(func() error {
			return kv.Set("session.draft", []byte(composer.Text()))
		})
	}

	// ==========================================================================
	// Event plumbing: transport and store both feed the program loop.
	// ==========================================================================
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := tr.Subscribe(ctx, func(ev transport.Event) {
		sendToProgram(chat.TransportEventMsg{Event: ev})
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer tr.Close()

	unsubscribe := st.Subscribe(func(ev store.Event) {
		sendToProgram(chat.StoreChangedMsg{Event: ev})
	})
	defer unsubscribe()

	// Config live reload: only view-layer knobs apply mid-session.
	if path != "" {
		if watcher, err := config.NewWatcher(path, func(next *config.Config) {
			sendToProgram(chat.ConfigReloadedMsg{Config: next})
		}); err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	// ==========================================================================
	// Run
	// ==========================================================================
	m := chat.New(chat.Deps{
		Store:     st,
		Composer:  composer,
		Recorder:  recorder,
		Emoji:     emojiIdx,
		Transport: tr,
		Session:   sessionMgr,
		Theme:     theme,
		ViewerID:  cfg.Viewer.ID,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Seed a demo peer in echo mode so the screen is not empty on first run.
	if cfg.Service.EchoPeer {
		go seedDemoConversation(tr, cfg.Viewer.ID)
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running palaver: %v\n", err)
		os.Exit(1)
	}
}

// seedDemoConversation injects a greeting so echo mode starts with a
// conversation on screen.
func seedDemoConversation(tr *transport.Loopback, viewerID string) {
	time.Sleep(300 * time.Millisecond)
	tr.Inject(transport.MessageEvent{Message: &model.Message{
		ID:             "msg_demo_greeting",
		ConversationID: "conv_demo",
		Sender:         "maria",
		Receiver:       viewerID,
		Kind:           model.KindText,
		Body:           "¡Hola! Ready to practice?",
		Delivery:       model.DeliveryDelivered,
		CreatedAt:      time.Now(),
	}})
	tr.Inject(transport.PresenceEvent{PeerID: "maria", Online: true, LastActive: time.Now()})
}

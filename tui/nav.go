package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quranku-cli/quranku/log"
)

// Navigator bridges the playback engine and the UI: the engine asks it
// whether a reading view is active and tells it to follow chapter changes.
// It is safe to construct before the program starts.
type Navigator struct {
	mu      sync.Mutex
	onRoute bool
	send    func(tea.Msg)
}

// NewNavigator returns a navigator with no active reading view.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// OnChapterRoute reports whether the reading view is showing.
func (n *Navigator) OnChapterRoute() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.onRoute
}

// NavigateToChapter forwards the chapter switch into the program loop.
func (n *Navigator) NavigateToChapter(id int) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()

	if send != nil {
		send(navigateMsg{chapterID: id})
	}
}

func (n *Navigator) setOnRoute(onRoute bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onRoute = onRoute
}

func (n *Navigator) bind(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

// Notifier surfaces engine failures as transient messages in the UI.
// Before the program starts, messages go to the log only.
type Notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewNotifier returns an unbound notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Error shows a transient error message.
func (n *Notifier) Error(message string) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()

	if send == nil {
		log.Error(message)
		return
	}
	send(toastMsg{text: message})
}

func (n *Notifier) bind(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quranku-cli/quranku/api"
	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/event"
	"github.com/quranku-cli/quranku/playback"
	"github.com/quranku-cli/quranku/player"
)

// Deps are the collaborators the UI renders from and controls.
type Deps struct {
	Engine    *player.Engine
	Store     *playback.Store
	Directory *chapter.Directory
	Bus       *event.Bus
	API       *api.Client
	Navigator *Navigator
	Notifier  *Notifier
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Continue resumes the saved playback session immediately.
	Continue bool
	// ChapterID starts playback of the chapter immediately.
	ChapterID int
	// Ayah starts playback at the given ayah of ChapterID.
	Ayah int
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(deps *Deps, options *Options) error {
	bubble := newBubble(deps, options)
	bubble.setState(loadingState)

	program := tea.NewProgram(bubble, tea.WithAltScreen())

	deps.Navigator.bind(program.Send)
	deps.Notifier.bind(program.Send)
	defer deps.Navigator.bind(nil)
	defer deps.Notifier.bind(nil)

	_, err := program.Run()
	return err
}

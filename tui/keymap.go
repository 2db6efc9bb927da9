package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
)

// statefulKeymap exposes the bindings relevant to the current state.
type statefulKeymap struct {
	state state

	quit     bubblesKey.Binding
	back     bubblesKey.Binding
	confirm  bubblesKey.Binding
	playing  bubblesKey.Binding // toggle play/pause
	seekBack bubblesKey.Binding
	seekFwd  bubblesKey.Binding
	speedUp  bubblesKey.Binding
	speedDn  bubblesKey.Binding
	repeat   bubblesKey.Binding
	follow   bubblesKey.Binding
	next     bubblesKey.Binding
	prev     bubblesKey.Binding
	reciter  bubblesKey.Binding
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: bubblesKey.NewBinding(
			bubblesKey.WithKeys("q", "ctrl+c"),
			bubblesKey.WithHelp("q", "quit"),
		),
		back: bubblesKey.NewBinding(
			bubblesKey.WithKeys("esc"),
			bubblesKey.WithHelp("esc", "back"),
		),
		confirm: bubblesKey.NewBinding(
			bubblesKey.WithKeys("enter"),
			bubblesKey.WithHelp("enter", "play chapter"),
		),
		playing: bubblesKey.NewBinding(
			bubblesKey.WithKeys(" "),
			bubblesKey.WithHelp("space", "play/pause"),
		),
		seekBack: bubblesKey.NewBinding(
			bubblesKey.WithKeys("left", "h"),
			bubblesKey.WithHelp("←", "seek -5s"),
		),
		seekFwd: bubblesKey.NewBinding(
			bubblesKey.WithKeys("right", "l"),
			bubblesKey.WithHelp("→", "seek +5s"),
		),
		speedUp: bubblesKey.NewBinding(
			bubblesKey.WithKeys("+", "="),
			bubblesKey.WithHelp("+", "faster"),
		),
		speedDn: bubblesKey.NewBinding(
			bubblesKey.WithKeys("-"),
			bubblesKey.WithHelp("-", "slower"),
		),
		repeat: bubblesKey.NewBinding(
			bubblesKey.WithKeys("r"),
			bubblesKey.WithHelp("r", "repeat"),
		),
		follow: bubblesKey.NewBinding(
			bubblesKey.WithKeys("a"),
			bubblesKey.WithHelp("a", "auto scroll"),
		),
		next: bubblesKey.NewBinding(
			bubblesKey.WithKeys("n"),
			bubblesKey.WithHelp("n", "next chapter"),
		),
		prev: bubblesKey.NewBinding(
			bubblesKey.WithKeys("p"),
			bubblesKey.WithHelp("p", "previous chapter"),
		),
		reciter: bubblesKey.NewBinding(
			bubblesKey.WithKeys("c"),
			bubblesKey.WithHelp("c", "cycle reciter"),
		),
	}
}

func (k *statefulKeymap) setState(s state) {
	k.state = s
}

// ShortHelp lists the bindings shown in the condensed help line.
func (k *statefulKeymap) ShortHelp() []bubblesKey.Binding {
	switch k.state {
	case playerState:
		return []bubblesKey.Binding{k.playing, k.seekBack, k.seekFwd, k.next, k.back, k.quit}
	case chaptersState:
		return []bubblesKey.Binding{k.confirm, k.quit}
	default:
		return []bubblesKey.Binding{k.back, k.quit}
	}
}

// FullHelp lists every binding for the expanded help view.
func (k *statefulKeymap) FullHelp() [][]bubblesKey.Binding {
	switch k.state {
	case playerState:
		return [][]bubblesKey.Binding{
			{k.playing, k.seekBack, k.seekFwd},
			{k.speedUp, k.speedDn, k.repeat, k.follow},
			{k.next, k.prev, k.reciter},
			{k.back, k.quit},
		}
	default:
		return [][]bubblesKey.Binding{k.ShortHelp()}
	}
}

package tui

import (
	"time"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/event"
	"github.com/quranku-cli/quranku/log"
	"github.com/quranku-cli/quranku/playback"
)

// Update routes messages to the state the bubble is currently in.
func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil

	case tickMsg:
		return b, tick()

	case chaptersLoadedMsg:
		return b, b.handleChaptersLoaded(msg.chapters)

	case recitersLoadedMsg:
		b.reciters = msg.reciters
		return b, nil

	case playbackStartedMsg:
		if c, ok := b.chapterByID(msg.chapterID); ok {
			b.current = c
		}
		b.setState(playerState)
		return b, nil

	case navigateMsg:
		if c, ok := b.chapterByID(msg.chapterID); ok {
			b.current = c
		}
		return b, nil

	case toastMsg:
		b.toast = msg.text
		return b, tea.Tick(toastLifetime, func(time.Time) tea.Msg {
			return clearToastMsg{}
		})

	case clearToastMsg:
		b.toast = ""
		return b, nil

	case errMsg:
		log.Error(msg.err)
		b.lastError = msg.err
		b.setState(errorState)
		return b, nil

	case tea.KeyMsg:
		if cmd, handled := b.handleKey(msg); handled {
			return b, cmd
		}
	}

	return b, b.updateComponents(msg)
}

// handleChaptersLoaded fills the browser and honors the startup options.
func (b *statefulBubble) handleChaptersLoaded(chapters []chapter.Chapter) tea.Cmd {
	b.chapters = chapters

	recent := make(map[int]struct{})
	for _, entry := range b.deps.Store.History() {
		recent[entry.ChapterID] = struct{}{}
	}

	items := make([]list.Item, 0, len(chapters))
	for _, c := range chapters {
		_, isRecent := recent[c.ID]
		items = append(items, &listItem{chapter: c, recent: isRecent})
	}
	cmd := b.chaptersC.SetItems(items)

	switch {
	case b.options.ChapterID > 0:
		payload := &event.StartPayload{StartFromAyah: b.options.Ayah}
		return tea.Batch(cmd, b.startChapter(b.options.ChapterID, payload))

	case b.options.Continue:
		if h, ok := b.deps.Store.PlayingHistory(); ok {
			payload := &event.StartPayload{StartFromSeconds: h.Time}
			return tea.Batch(cmd, b.startChapter(h.AudioID, payload))
		}
		b.setState(chaptersState)

	default:
		b.setState(chaptersState)
	}

	return cmd
}

// handleKey reacts to state-specific bindings. Unhandled keys fall through
// to the focused component.
func (b *statefulBubble) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	keymap := b.keymap

	if bubblesKey.Matches(msg, keymap.quit) && !b.filtering() {
		b.deps.Engine.Dismiss()
		return tea.Quit, true
	}

	switch b.state {
	case chaptersState:
		if b.filtering() {
			return nil, false
		}
		if bubblesKey.Matches(msg, keymap.confirm) {
			if item, ok := b.chaptersC.SelectedItem().(*listItem); ok {
				return b.startChapter(item.chapter.ID, nil), true
			}
		}

	case playerState:
		return b.handlePlayerKey(msg)

	case errorState:
		if bubblesKey.Matches(msg, keymap.back) {
			b.lastError = nil
			b.setState(chaptersState)
			return nil, true
		}
	}

	return nil, false
}

func (b *statefulBubble) handlePlayerKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	var (
		keymap = b.keymap
		engine = b.deps.Engine
		store  = b.deps.Store
	)

	switch {
	case bubblesKey.Matches(msg, keymap.back):
		b.setState(chaptersState)
		return nil, true

	case bubblesKey.Matches(msg, keymap.playing):
		if store.IsPlaying() {
			b.deps.Bus.Pause.Emit(struct{}{})
		} else {
			b.deps.Bus.Play.Emit(struct{}{})
		}
		return nil, true

	case bubblesKey.Matches(msg, keymap.seekBack):
		engine.SeekTo(store.TrackProgress() - 5)
		return nil, true

	case bubblesKey.Matches(msg, keymap.seekFwd):
		engine.SeekTo(store.TrackProgress() + 5)
		return nil, true

	case bubblesKey.Matches(msg, keymap.speedUp):
		engine.SetSpeed(nextSpeed(store.Speed(), 1))
		return nil, true

	case bubblesKey.Matches(msg, keymap.speedDn):
		engine.SetSpeed(nextSpeed(store.Speed(), -1))
		return nil, true

	case bubblesKey.Matches(msg, keymap.repeat):
		if err := store.SetRepeat(!store.Repeat()); err != nil {
			log.Warn(err)
		}
		return nil, true

	case bubblesKey.Matches(msg, keymap.follow):
		if err := store.SetAutoScroll(!store.AutoScroll()); err != nil {
			log.Warn(err)
		}
		return nil, true

	case bubblesKey.Matches(msg, keymap.next):
		return b.startChapter(chapter.Next(b.current.ID), nil), true

	case bubblesKey.Matches(msg, keymap.prev):
		prev := b.current.ID - 1
		if prev < 1 {
			prev = b.deps.Directory.Total()
		}
		return b.startChapter(prev, nil), true

	case bubblesKey.Matches(msg, keymap.reciter):
		return b.cycleReciter(), true
	}

	return nil, false
}

// cycleReciter switches to the next reciter in the listing.
func (b *statefulBubble) cycleReciter() tea.Cmd {
	if len(b.reciters) < 2 {
		return nil
	}

	current := b.deps.Store.ReciterID()
	index := 0
	for i, r := range b.reciters {
		if r.ID == current {
			index = (i + 1) % len(b.reciters)
			break
		}
	}
	next := b.reciters[index].ID

	return func() tea.Msg {
		b.deps.Engine.SetReciter(next)
		return nil
	}
}

// nextSpeed steps through the valid playback rates.
func nextSpeed(current float64, direction int) float64 {
	for i, speed := range playback.Speeds {
		if speed == current {
			j := i + direction
			if j < 0 || j >= len(playback.Speeds) {
				return current
			}
			return playback.Speeds[j]
		}
	}
	return playback.DefaultSpeed
}

func (b *statefulBubble) filtering() bool {
	return b.chaptersC.FilterState() == list.Filtering
}

// updateComponents forwards messages to the component owning the focus.
func (b *statefulBubble) updateComponents(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	switch b.state {
	case chaptersState:
		var cmd tea.Cmd
		b.chaptersC, cmd = b.chaptersC.Update(msg)
		cmds = append(cmds, cmd)

	case loadingState:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		cmds = append(cmds, cmd)

	case playerState:
		if b.deps.Store.CurrentEvent().Busy() {
			var cmd tea.Cmd
			b.spinnerC, cmd = b.spinnerC.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return tea.Batch(cmds...)
}

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/quranku-cli/quranku/audio"
	"github.com/quranku-cli/quranku/event"
	"github.com/quranku-cli/quranku/key"
)

// Init starts the directory load, the reciter load and the render ticker.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(
		b.spinnerC.Tick,
		b.loadChapters(),
		b.loadReciters(),
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (b *statefulBubble) loadChapters() tea.Cmd {
	return func() tea.Msg {
		chapters, err := b.deps.Directory.All()
		if err != nil {
			return errMsg{err: err}
		}
		return chaptersLoadedMsg{chapters: chapters}
	}
}

func (b *statefulBubble) loadReciters() tea.Cmd {
	return func() tea.Msg {
		reciters, err := b.deps.API.Recitations(viper.GetString(key.APILanguage))
		if err != nil {
			// Reciter cycling degrades gracefully without the listing.
			return recitersLoadedMsg{}
		}
		return recitersLoadedMsg{reciters: reciters}
	}
}

// startChapter emits a start request on the bus and reports the outcome
// back into the program loop.
func (b *statefulBubble) startChapter(chapterID int, payload *event.StartPayload) tea.Cmd {
	return func() tea.Msg {
		done := make(chan tea.Msg, 1)

		wrapped := &event.StartPayload{}
		if payload != nil {
			*wrapped = *payload
		}
		wrapped.Success = func(_ *audio.Track) {
			done <- playbackStartedMsg{chapterID: chapterID}
		}
		wrapped.Error = func(err error) {
			done <- errMsg{err: err}
		}

		b.deps.Bus.Start.Emit(event.StartRequest{ChapterID: chapterID, Payload: wrapped})

		return <-done
	}
}

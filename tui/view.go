package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wrap"

	"github.com/quranku-cli/quranku/color"
	"github.com/quranku-cli/quranku/icon"
	"github.com/quranku-cli/quranku/playback"
	"github.com/quranku-cli/quranku/style"
	"github.com/quranku-cli/quranku/util"
)

// View renders the current state.
func (b *statefulBubble) View() string {
	switch b.state {
	case loadingState:
		return paddingStyle.Render(b.spinnerC.View() + " Loading chapters...")
	case errorState:
		return b.viewError()
	case chaptersState:
		return paddingStyle.Render(b.chaptersC.View())
	case playerState:
		return b.viewPlayer()
	default:
		return ""
	}
}

func (b *statefulBubble) viewError() string {
	var sb strings.Builder

	sb.WriteString(style.ErrorTitle("Error"))
	sb.WriteString("\n\n")
	if b.lastError != nil {
		sb.WriteString(wrap.String(b.lastError.Error(), b.width))
	}
	sb.WriteString("\n\n")
	sb.WriteString(b.helpC.View(b.keymap))

	return paddingStyle.Render(sb.String())
}

func (b *statefulBubble) viewPlayer() string {
	var (
		sb    strings.Builder
		store = b.deps.Store
	)

	header := fmt.Sprintf("%d. %s", b.current.ID, b.current.NameSimple)
	sb.WriteString(titleStyle.Render(header))
	if b.current.NameArabic != "" {
		sb.WriteString("  ")
		sb.WriteString(style.Fg(color.Gold)(b.current.NameArabic))
	}
	sb.WriteString("\n\n")

	sb.WriteString(b.statusLine())
	sb.WriteString("\n\n")

	position := store.TrackProgress()
	duration := store.Duration()
	ratio := 0.0
	if duration > 0 {
		ratio = position / duration
		if ratio > 1 {
			ratio = 1
		}
	}
	sb.WriteString(b.progressC.ViewAs(ratio))
	sb.WriteString("\n")
	sb.WriteString(style.Faint(fmt.Sprintf(
		"%s / %s",
		util.FormatPlaybackTimer(position),
		util.FormatPlaybackTimer(duration),
	)))
	sb.WriteString("\n\n")

	sb.WriteString(b.verseLine())
	sb.WriteString("\n\n")
	sb.WriteString(b.prefsLine())
	sb.WriteString("\n\n")

	if b.toast != "" {
		sb.WriteString(toastStyle.Render(b.toast))
		sb.WriteString("\n\n")
	}

	sb.WriteString(b.helpC.View(b.keymap))

	return paddingStyle.Render(sb.String())
}

// statusLine shows the lifecycle stage with a matching icon or spinner.
func (b *statefulBubble) statusLine() string {
	current := b.deps.Store.CurrentEvent()

	switch {
	case current.Busy():
		return b.spinnerC.View() + style.Faint(strings.ToLower(string(current)))
	case current.Failed():
		return style.Fg(color.Red)(icon.Get(icon.Fail) + " playback error")
	case b.deps.Store.IsPlaying():
		return icon.Get(icon.Play) + " playing"
	case current == playback.EventEnded:
		return style.Faint("ended")
	default:
		return icon.Get(icon.Pause) + " paused"
	}
}

// verseLine shows the ayah and word being recited.
func (b *statefulBubble) verseLine() string {
	highlight := b.deps.Store.Highlight()
	if highlight == "" {
		return style.Faint("...")
	}

	parts := strings.SplitN(highlight, ":", 3)
	if len(parts) == 3 {
		return fmt.Sprintf(
			"%s %s %s",
			icon.Get(icon.Audio),
			style.Bold("Ayah "+parts[0]+":"+parts[1]),
			style.Faint("word "+parts[2]),
		)
	}
	return fmt.Sprintf("%s %s", icon.Get(icon.Audio), style.Bold("Ayah "+highlight))
}

// prefsLine shows the active reciter, speed and toggles.
func (b *statefulBubble) prefsLine() string {
	store := b.deps.Store

	reciter := fmt.Sprintf("reciter #%d", store.ReciterID())
	for _, r := range b.reciters {
		if r.ID == store.ReciterID() {
			reciter = r.String()
			break
		}
	}

	onOff := func(enabled bool) string {
		if enabled {
			return style.Fg(color.Green)("on")
		}
		return style.Faint("off")
	}

	parts := []string{
		style.Fg(color.Cyan)(reciter),
		fmt.Sprintf("%gx", store.Speed()),
		"repeat " + onOff(store.Repeat()),
		"follow " + onOff(store.AutoScroll()),
	}

	return style.Faint(strings.Join(parts, "  ·  "))
}

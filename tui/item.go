package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/color"
	"github.com/quranku-cli/quranku/style"
)

// listItem implements list.Item for a chapter entry, optionally annotated
// as recently played.
type listItem struct {
	chapter chapter.Chapter
	recent  bool
}

// Title renders the chapter's number and names.
func (t *listItem) Title() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%3d. %s", t.chapter.ID, t.chapter.NameSimple))
	if t.chapter.NameArabic != "" {
		sb.WriteString("  ")
		sb.WriteString(style.Fg(color.Gold)(t.chapter.NameArabic))
	}
	if t.recent {
		sb.WriteString("  ")
		sb.WriteString(lipgloss.NewStyle().Faint(true).Render("(recent)"))
	}

	return sb.String()
}

// Description renders the translation, origin and length.
func (t *listItem) Description() string {
	parts := []string{t.chapter.TranslatedName}

	if t.chapter.RevelationPlace != "" {
		place := t.chapter.RevelationPlace
		place = strings.ToUpper(place[:1]) + place[1:]
		parts = append(parts, place)
	}
	parts = append(parts, fmt.Sprintf("%d ayat", t.chapter.VersesCount))

	return strings.Join(parts, " • ")
}

// FilterValue matches against both the transliterated and translated names.
func (t *listItem) FilterValue() string {
	return t.chapter.NameSimple + " " + t.chapter.TranslatedName
}

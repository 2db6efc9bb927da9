package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/quranku-cli/quranku/api"
	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/color"
	"github.com/quranku-cli/quranku/util"
)

// Messages flowing through the program loop.
type (
	tickMsg            struct{}
	navigateMsg        struct{ chapterID int }
	toastMsg           struct{ text string }
	clearToastMsg      struct{}
	chaptersLoadedMsg  struct{ chapters []chapter.Chapter }
	recitersLoadedMsg  struct{ reciters []api.Reciter }
	playbackStartedMsg struct{ chapterID int }
	errMsg             struct{ err error }
)

const (
	tickInterval  = 250 * time.Millisecond
	toastLifetime = 4 * time.Second
)

var (
	paddingStyle = lipgloss.NewStyle().Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(color.New("230")).Background(color.New("62")).Padding(0, 1)
	toastStyle   = lipgloss.NewStyle().Foreground(color.New("230")).Background(color.Red).Padding(0, 1)
)

// statefulBubble is the primary UI model: a chapter browser and the
// player view rendered from the playback store.
type statefulBubble struct {
	state   state
	keymap  *statefulKeymap
	loading bool

	// components
	chaptersC list.Model
	progressC progress.Model
	spinnerC  spinner.Model
	helpC     help.Model

	current  chapter.Chapter
	chapters []chapter.Chapter
	reciters []api.Reciter

	toast     string
	lastError error

	width, height int

	deps    *Deps
	options *Options
}

// setState transitions the workflow and its keymap together, keeping the
// navigator's route flag in sync.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
	b.deps.Navigator.setOnRoute(s == playerState)
}

// resize propagates terminal dimension changes to the child components.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.chaptersC.SetSize(width-x, height-y)
	b.chaptersC.Help.Width = width - x
	b.progressC.Width = width - x - 4
	b.helpC.Width = width - x

	b.width = width - x
	b.height = height - y
}

// chapterByID resolves a chapter from the loaded directory listing.
func (b *statefulBubble) chapterByID(id int) (chapter.Chapter, bool) {
	for _, c := range b.chapters {
		if c.ID == id {
			return c, true
		}
	}
	return chapter.Chapter{}, false
}

func newBubble(deps *Deps, options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := &statefulBubble{
		keymap:  keymap,
		deps:    deps,
		options: options,
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(color.Gold).
		Foreground(color.Gold).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	chaptersC := list.New([]list.Item{}, delegate, 0, 0)
	chaptersC.Title = "Chapters"
	chaptersC.Styles.Title = titleStyle
	chaptersC.SetStatusBarItemName("chapter", "chapters")
	chaptersC.SetShowPagination(false)
	chaptersC.AdditionalShortHelpKeys = keymap.ShortHelp
	chaptersC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return keymap.FullHelp()[0]
	}
	bubble.chaptersC = chaptersC

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(color.New("205"))

	bubble.helpC = help.New()

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble
}

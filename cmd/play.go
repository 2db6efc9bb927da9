// Package cmd implements the command-line interface for quranku.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/key"
	"github.com/quranku-cli/quranku/playback"
	"github.com/quranku-cli/quranku/tui"
	"github.com/quranku-cli/quranku/util"
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().IntP("ayah", "a", 0, "Start playback at the given ayah of the chapter")
	playCmd.Flags().BoolP("continue", "c", false, "Resume playback from the saved session")
}

// playCmd starts chapter playback directly, skipping the browser.
var playCmd = &cobra.Command{
	Use:   "play [chapter]",
	Short: "Play a chapter recitation by number or name",
	Long: `Play a chapter recitation by number or name.
Without arguments the saved playback session is resumed.`,
	Args:    cobra.MaximumNArgs(1),
	Example: "  quranku play 36\n  quranku play yasin\n  quranku play --continue",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		options := tui.Options{
			Continue: lo.Must(cmd.Flags().GetBool("continue")),
			Ayah:     lo.Must(cmd.Flags().GetInt("ayah")),
		}

		application := buildApp()
		defer application.close()

		if len(args) > 0 {
			found, err := resolveChapter(application.deps.Directory, args[0])
			handleErr(err)

			if options.Ayah == 0 && promptResume(application.deps.Store, found.ID) {
				// The continue path restores the saved position of the
				// same chapter the argument resolved to.
				options.Continue = true
			} else {
				options.ChapterID = found.ID
			}
		} else {
			options.Continue = true
		}

		handleErr(tui.Run(application.deps, &options))
	},
}

// resolveChapter accepts a chapter id or a fuzzy name query.
func resolveChapter(directory *chapter.Directory, query string) (chapter.Chapter, error) {
	if id, err := strconv.Atoi(query); err == nil {
		found, err := directory.Find(id)
		if err != nil {
			return chapter.Chapter{}, err
		}
		if c, ok := found.Get(); ok {
			return c, nil
		}
		return chapter.Chapter{}, fmt.Errorf("no chapter with id %d", id)
	}

	matches, err := directory.Search(query)
	if err != nil {
		return chapter.Chapter{}, err
	}
	if len(matches) == 0 {
		return chapter.Chapter{}, fmt.Errorf("no chapter matches %q", query)
	}
	return matches[0], nil
}

// promptResume asks to pick up the saved session when it points at the
// requested chapter.
func promptResume(store *playback.Store, chapterID int) bool {
	if !viper.GetBool(key.PlayerResumePrompt) {
		return false
	}

	saved, ok := store.PlayingHistory()
	if !ok || saved.AudioID != chapterID || saved.Time <= 0 {
		return false
	}

	resume := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Resume from %s?", util.FormatPlaybackTimer(saved.Time)),
		Default: true,
	}
	if err := survey.AskOne(prompt, &resume); err != nil {
		return false
	}
	return resume
}

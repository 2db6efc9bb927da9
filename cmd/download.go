// Package cmd implements the command-line interface for quranku.
package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/quranku-cli/quranku/api"
	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/color"
	"github.com/quranku-cli/quranku/download"
	"github.com/quranku-cli/quranku/icon"
	"github.com/quranku-cli/quranku/style"
)

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringP("dir", "d", ".", "Directory to save the audio file into")
	downloadCmd.Flags().StringP("reciter", "r", api.DefaultReciterSlug, "Reciter slug on the download mirror")
}

// downloadCmd saves a chapter recitation as a local MP3 file.
var downloadCmd = &cobra.Command{
	Use:     "download [chapter]",
	Short:   "Download a chapter recitation as an MP3 file",
	Args:    cobra.ExactArgs(1),
	Example: "  quranku download 1\n  quranku download yasin --dir ~/Music",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			dir  = lo.Must(cmd.Flags().GetString("dir"))
			slug = lo.Must(cmd.Flags().GetString("reciter"))
		)

		apiClient, _ := newAPIClient()
		directory := chapter.NewDirectory(apiClient.Chapters)

		found, err := resolveChapter(directory, args[0])
		handleErr(err)

		url := api.DownloadURL(slug, found.ID)

		path, err := download.Audio(url, download.Options{
			Dir:  dir,
			Name: fmt.Sprintf("%s.mp3", found.NameSimple),
			OnProgress: func(written, total int64) {
				if total <= 0 {
					return
				}
				fmt.Printf(
					"\r%s Downloading %s... %3.0f%%",
					icon.Get(icon.Progress),
					found.NameSimple,
					float64(written)/float64(total)*100,
				)
			},
		})
		fmt.Println()
		handleErr(err)

		fmt.Printf(
			"%s saved to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Bold(path),
		)
	},
}

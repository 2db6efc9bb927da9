// Package cmd implements the command-line interface for quranku.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/color"
	"github.com/quranku-cli/quranku/style"
	"github.com/quranku-cli/quranku/util"
)

func init() {
	rootCmd.AddCommand(chaptersCmd)
	chaptersCmd.Flags().StringP("search", "s", "", "Fuzzy-filter chapters by name")
	chaptersCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	chaptersCmd.SetOut(os.Stdout)
}

// chaptersCmd lists the chapter directory, optionally filtered.
var chaptersCmd = &cobra.Command{
	Use:     "chapters",
	Short:   "List the chapters of the Quran",
	Example: "  quranku chapters\n  quranku chapters --search fatiha",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			query  = lo.Must(cmd.Flags().GetString("search"))
			asJson = lo.Must(cmd.Flags().GetBool("json"))
		)

		apiClient, _ := newAPIClient()
		directory := chapter.NewDirectory(apiClient.Chapters)

		var (
			chapters []chapter.Chapter
			err      error
		)
		if query != "" {
			chapters, err = directory.Search(query)
		} else {
			chapters, err = directory.All()
		}
		handleErr(err)

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			lo.Must0(encoder.Encode(chapters))
			return
		}

		for _, c := range chapters {
			cmd.Printf(
				"%s %s %s\n",
				style.Fg(color.Purple)(fmt.Sprintf("%3d.", c.ID)),
				style.Bold(c.NameSimple),
				style.Fg(color.Gold)(c.NameArabic),
			)
			cmd.Printf(
				"     %s\n",
				style.Faint(fmt.Sprintf(
					"%s, %s, %s",
					c.TranslatedName,
					c.RevelationPlace,
					util.Quantify(c.VersesCount, "ayah", "ayat"),
				)),
			)
		}
	},
}

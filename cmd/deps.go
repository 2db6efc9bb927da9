// Package cmd implements the command-line interface for quranku.
package cmd

import (
	"context"

	"github.com/quranku-cli/quranku/api"
	"github.com/quranku-cli/quranku/audio"
	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/event"
	"github.com/quranku-cli/quranku/network"
	"github.com/quranku-cli/quranku/playback"
	"github.com/quranku-cli/quranku/player"
	"github.com/quranku-cli/quranku/tui"
	"github.com/quranku-cli/quranku/where"
)

// app bundles the wired playback graph behind a single teardown handle.
type app struct {
	deps   *tui.Deps
	mpv    *player.MPV
	cancel context.CancelFunc
}

// newAPIClient wires the retrying HTTP client and its abort registry.
func newAPIClient() (*api.Client, *network.Registry) {
	registry := network.NewRegistry()
	return api.NewClient(network.NewClient(registry)), registry
}

// buildApp assembles every collaborator the player needs: the abort
// registry, the API client, the track cache keyed by it, the persisted
// state store, the mpv element and the engine reacting on the bus.
func buildApp() *app {
	apiClient, registry := newAPIClient()

	fetch := func(ctx context.Context, reciterID, chapterID int) (*audio.Track, error) {
		return apiClient.ChapterRecitation(reciterID, chapterID, network.RequestConfig{
			SignalID: player.SignalAudioRequest,
			Signal:   ctx,
		})
	}
	cache := audio.NewCache(fetch, registry, player.SignalAudioRequest)

	store := playback.NewStore(where.PlayerState())
	directory := chapter.NewDirectory(apiClient.Chapters)
	bus := event.NewBus()

	navigator := tui.NewNavigator()
	notifier := tui.NewNotifier()

	element := player.NewMPV()
	engine := player.NewEngine(element, store, cache, registry, bus, navigator, notifier)
	engine.Attach()

	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)

	return &app{
		deps: &tui.Deps{
			Engine:    engine,
			Store:     store,
			Directory: directory,
			Bus:       bus,
			API:       apiClient,
			Navigator: navigator,
			Notifier:  notifier,
		},
		mpv:    element,
		cancel: cancel,
	}
}

func (a *app) close() {
	a.cancel()
	a.deps.Engine.Detach()
	_ = a.mpv.Close()
}

// runTUI executes the terminal user interface against a freshly wired graph.
func runTUI(options *tui.Options) {
	application := buildApp()
	defer application.close()

	handleErr(tui.Run(application.deps, options))
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"hbcplayer/client"
	"hbcplayer/config"
	"hbcplayer/core/audio"
	"hbcplayer/core/session"
	"hbcplayer/logger"
	"hbcplayer/model"

	"github.com/spf13/cobra"
)

var (
	playerUsername string
	playerPassword string
)

// watchLocalState re-hydrates the stores whenever another process
// instance rewrites the state file.
func watchLocalState(local *session.LocalState, playlistStore *session.PlaylistStore, audioStore *session.AudioStore) error {
	return local.Watch(func() {
		playlist, volume, err := local.Load()
		if err != nil {
			logger.Warn("Failed to reload local state", logger.ErrorField(err))
			return
		}
		playlistStore.SetTracks(playlist.TrackIDs, playlist.CurrentIndex)
		audioStore.RestoreVolume(volume)
	})
}

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Run the interactive player session",
	Long:  `Runs the local playback session against the playlist API: queue management, auto playlists, guest persistence and guest-to-login merge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer()
	},
}

func init() {
	playerCmd.Flags().StringVarP(&playerUsername, "user", "u", "", "username or email to log in with")
	playerCmd.Flags().StringVarP(&playerPassword, "password", "p", "", "password to log in with")
	rootCmd.AddCommand(playerCmd)
}

func runPlayer() error {
	cfg := config.Load()
	ctx := context.Background()

	local, err := session.NewLocalState(cfg.StateDir)
	if err != nil {
		return err
	}
	defer local.Close()

	playlistStore := session.NewPlaylistStore()
	audioStore := session.NewAudioStore()

	// Hydrate the guest state from disk.
	savedPlaylist, savedVolume, err := local.Load()
	if err != nil {
		logger.Warn("Failed to load local state", logger.ErrorField(err))
	} else {
		playlistStore.SetTracks(savedPlaylist.TrackIDs, savedPlaylist.CurrentIndex)
		audioStore.RestoreVolume(savedVolume)
	}

	persist := func() {
		if err := local.Save(playlistStore.Snapshot(), audioStore.VolumeSnapshot()); err != nil {
			logger.Warn("Failed to save local state", logger.ErrorField(err))
		}
	}
	playlistStore.OnChange(func(model.Playlist) { persist() })
	audioStore.OnVolumeChange(func(session.VolumeState) { persist() })

	// Another process instance writing the state file re-hydrates us.
	if err := watchLocalState(local, playlistStore, audioStore); err != nil {
		logger.Warn("Local state watch unavailable", logger.ErrorField(err))
	}

	api := client.New(cfg.APIBaseURL)
	syncSvc := session.NewSyncService(api, playlistStore, cfg.PreserveGuestPlaylist)
	player := audio.NewBeepPlayer(api)
	defer player.Close()
	player.SetVolume(audioStore.Volume())

	orch := session.NewOrchestrator(playlistStore, audioStore, syncSvc, player)

	if playerUsername != "" {
		user, err := api.Login(ctx, playerUsername, playerPassword)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Printf("Logged in as %s\n", user.Username)
		if err := syncSvc.HandleLogin(ctx, true); err != nil {
			logger.Warn("Login playlist merge failed", logger.ErrorField(err))
		}

		// Queue writes from the user's other devices arrive over the
		// sync socket; the hub already skips our own device id.
		sub, err := api.SubscribeSync(ctx, func(p model.Playlist) {
			playlistStore.SetTracks(p.TrackIDs, p.CurrentIndex)
		})
		if err != nil {
			logger.Warn("Cross-device sync unavailable", logger.ErrorField(err))
		} else {
			defer sub.Close()
		}
	}

	fmt.Println("Commands: main [category] | search <q> | artist <id> | liked | following | cart | play <trackId> | at <n> | pause | next | prev | vol <0-100> | mute | show | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "main":
			req := model.AutoPlaylistRequest{Type: model.AutoPlaylistMain}
			if len(fields) > 1 {
				req.Category = fields[1]
			}
			err = orch.PlayFromList(ctx, req, 0)
		case "search":
			if len(fields) < 2 {
				fmt.Println("usage: search <query>")
				continue
			}
			err = orch.PlayFromList(ctx, model.AutoPlaylistRequest{
				Type:  model.AutoPlaylistSearch,
				Query: strings.Join(fields[1:], " "),
			}, 0)
		case "artist":
			if len(fields) < 2 {
				fmt.Println("usage: artist <id>")
				continue
			}
			var id int64
			id, err = strconv.ParseInt(fields[1], 10, 64)
			if err == nil {
				err = orch.PlayFromList(ctx, model.AutoPlaylistRequest{
					Type:       model.AutoPlaylistArtist,
					ArtistID:   id,
					PublicOnly: true,
				}, 0)
			}
		case "liked":
			err = orch.PlayFromList(ctx, model.AutoPlaylistRequest{Type: model.AutoPlaylistLiked}, 0)
		case "following":
			err = orch.PlayFromList(ctx, model.AutoPlaylistRequest{Type: model.AutoPlaylistFollowing}, 0)
		case "cart":
			err = orch.PlayFromList(ctx, model.AutoPlaylistRequest{Type: model.AutoPlaylistCart}, 0)
		case "play":
			if len(fields) < 2 {
				fmt.Println("usage: play <trackId>")
				continue
			}
			var id int64
			id, err = strconv.ParseInt(fields[1], 10, 64)
			if err == nil {
				err = orch.PlayTrack(ctx, id)
			}
		case "at":
			if len(fields) < 2 {
				fmt.Println("usage: at <index>")
				continue
			}
			var n int
			n, err = strconv.Atoi(fields[1])
			if err == nil {
				if err = syncSvc.PlayTrackAtIndex(n); err == nil {
					err = orch.PlayCurrent(ctx)
				}
			}
		case "pause":
			orch.TogglePause()
		case "next":
			err = orch.Next(ctx)
		case "prev":
			err = orch.Prev(ctx)
		case "vol":
			if len(fields) < 2 {
				fmt.Println("usage: vol <0-100>")
				continue
			}
			var pct int
			pct, err = strconv.Atoi(fields[1])
			if err == nil {
				orch.SetVolume(float64(pct) / 100)
			}
		case "mute":
			orch.ToggleMute()
		case "show":
			snapshot := playlistStore.Snapshot()
			fmt.Printf("queue=%v index=%d status=%s volume=%.0f%%\n",
				snapshot.TrackIDs, snapshot.CurrentIndex,
				audioStore.Status(), audioStore.Volume()*100)
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}

		if err != nil {
			fmt.Println(err)
		}
	}
}

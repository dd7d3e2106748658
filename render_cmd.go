package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/speakdown/internal/api"
	"github.com/dgnsrekt/speakdown/internal/document"
	"github.com/dgnsrekt/speakdown/internal/manifest"
	"github.com/dgnsrekt/speakdown/internal/render"
	"github.com/dgnsrekt/speakdown/narrate"
)

var (
	showTimestamps bool

	renderCmd = &cobra.Command{
		Use:   "render PATH",
		Short: "Render a synced document with word-level highlighting",
		Long: "\nRender fetches the alignment track recorded for a document during sync and\nwalks its text nodes, highlighting every word the track covers. Documents\nwithout alignment render as plain text.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
)

func init() {
	renderCmd.Flags().BoolVar(&showTimestamps, "timestamps", false, "annotate highlighted words with their time bounds")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	path := filepath.Clean(args[0])
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read document: %w", err)
	}

	doc, err := document.Flatten(path, source)
	if err != nil {
		return fmt.Errorf("unable to flatten document: %w", err)
	}

	mf, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	entry, ok := mf.Get(path)
	if !ok {
		return fmt.Errorf("%s has not been synced yet; run `speakdown sync %s` first", path, path)
	}

	var track narrate.AlignmentTrack
	if entry.AlignmentRef != "" {
		client := api.NewClient(api.Config{BaseURL: cfg.APIURL, APIKey: cfg.APIKey})
		cache := narrate.NewTrackCache(client)

		track, err = cache.Track(cmd.Context(), entry.AlignmentRef)
		if errors.Is(err, narrate.ErrTrackUnavailable) {
			log.Warn("alignment track unavailable, rendering plain text", "doc", path)
		} else if err != nil {
			return err
		}

		// The duration is only known once the track is in hand; backfill it.
		if track.Duration > 0 {
			mf.SetDuration(path, track.Duration)
			if err := mf.Save(); err != nil {
				log.Warn("unable to record track duration", "doc", path, "err", err)
			}
		}
	} else {
		log.Warn("document was synced without alignment, rendering plain text", "doc", path)
	}

	// One cursor threads through every node of the document, in order.
	matcher := narrate.NewMatcher()
	var cursor narrate.Cursor
	styles := render.DefaultStyles()

	for i, node := range doc.Nodes {
		if i > 0 {
			fmt.Println()
			fmt.Println()
		}
		spans := matcher.Match(node, track.Words, &cursor)
		if err := render.Spans(os.Stdout, spans, styles, showTimestamps); err != nil {
			return err
		}
	}
	fmt.Println()

	if len(track.Words) > 0 {
		log.Debug("rendered with alignment",
			"words", len(track.Words),
			"consumed", cursor.Pos(),
			"duration", track.Duration)
	}
	return nil
}

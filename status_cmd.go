package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/speakdown/internal/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List synced documents and their artifacts",
	RunE:  runStatus,
}

func runStatus(*cobra.Command, []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	mf, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}
	if mf.Len() == 0 {
		fmt.Println("No documents synced yet.")
		return nil
	}

	type row struct {
		id    string
		entry manifest.Entry
	}
	var rows []row
	mf.Each(func(id string, entry manifest.Entry) {
		rows = append(rows, row{id, entry})
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })

	for _, r := range rows {
		alignment := "aligned"
		if r.entry.AlignmentRef == "" {
			alignment = "no alignment"
		}
		fmt.Printf("%s\t%s\t%s\n", r.id, alignment, humanize.Time(r.entry.SyncedAt))
	}
	return nil
}

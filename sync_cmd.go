package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/speakdown/internal/api"
	"github.com/dgnsrekt/speakdown/internal/document"
	"github.com/dgnsrekt/speakdown/internal/manifest"
	"github.com/dgnsrekt/speakdown/internal/render"
	"github.com/dgnsrekt/speakdown/narrate"
)

var (
	forceSync bool

	syncCmd = &cobra.Command{
		Use:   "sync [PATH...]",
		Short: "Synthesize narration for new or changed documents",
		Long: "\nSync flattens each markdown document to narratable text, submits a\nsynthesis job for every document whose content changed since the last run,\nand waits for the linked alignment job before recording the resulting\nartifacts in the manifest.",
		RunE:  runSync,
	}
)

func init() {
	syncCmd.Flags().BoolVarP(&forceSync, "force", "f", false, "resynthesize even if content is unchanged")
	syncCmd.Flags().String("voice", "", "voice preset")
	syncCmd.Flags().String("quality", "", "synthesis quality tier")
	syncCmd.Flags().String("language", "", "narration language code")
	syncCmd.Flags().IntP("jobs", "j", 0, "number of documents to process concurrently")

	_ = viper.BindPFlag("voice", syncCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("quality", syncCmd.Flags().Lookup("quality"))
	_ = viper.BindPFlag("language", syncCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("jobs", syncCmd.Flags().Lookup("jobs"))
}

// outcome classifies one document's sync result.
type outcome int

const (
	outcomeSynced outcome = iota
	outcomeUnchanged
	outcomeErrored
)

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	files, err := collectMarkdownFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no markdown documents found")
	}

	mf, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	client := api.NewClient(api.Config{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
	})

	var (
		mu      sync.Mutex
		summary render.Summary
	)

	// One awaiter per document; awaiters share no state, so a bounded number
	// of documents can be in flight at once.
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Jobs)

	for _, path := range files {
		path := path
		g.Go(func() error {
			result := syncDocument(ctx, client, mf, cfg, path)

			mu.Lock()
			switch result {
			case outcomeSynced:
				summary.Synced++
			case outcomeUnchanged:
				summary.Unchanged++
			case outcomeErrored:
				summary.Errored++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := mf.Save(); err != nil {
		return err
	}

	fmt.Println(summary.Render())
	if summary.Errored > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Errored, len(files))
	}
	return nil
}

// syncDocument drives one document through flatten, submit, and await. A
// failure is reported and counted but never aborts the rest of the batch.
func syncDocument(ctx context.Context, client *api.Client, mf *manifest.Manifest, cfg settings, path string) outcome {
	logger := log.With("doc", path)

	source, err := os.ReadFile(path)
	if err != nil {
		logger.Error("unable to read document", "err", err)
		return outcomeErrored
	}

	doc, err := document.Flatten(path, source)
	if err != nil {
		logger.Error("unable to flatten document", "err", err)
		return outcomeErrored
	}

	narration := doc.Narration()
	if strings.TrimSpace(narration) == "" {
		logger.Debug("document has no narratable text")
		return outcomeUnchanged
	}

	hash := manifest.HashContent([]byte(narration))
	if entry, ok := mf.Get(path); ok && entry.ContentHash == hash && !forceSync {
		logger.Debug("content unchanged")
		return outcomeUnchanged
	}

	jobID, err := client.Submit(ctx, api.SubmitRequest{
		Text:     narration,
		Voice:    cfg.Voice,
		Quality:  cfg.Quality,
		Language: cfg.Language,
	})
	if err != nil {
		logger.Error("unable to submit job", "err", err)
		return outcomeErrored
	}

	awaiter := narrate.NewAwaiter(client, narrate.PollPolicy{
		MaxAttempts:       cfg.MaxAttempts,
		Interval:          cfg.PollInterval,
		AbsenceGracePolls: cfg.GracePolls,
	})
	awaiter.SetLogger(logger)
	awaiter.OnPoll(func(view narrate.CompositeJobView) {
		logger.Debug("job progress", "primary", view.PrimaryStatus, "alignment", view.AlignmentStatus)
	})

	completion, err := awaiter.AwaitCompletion(ctx, jobID)
	if err != nil {
		logger.Error("job did not complete", "job", jobID, "err", err)
		return outcomeErrored
	}

	if !completion.AlignmentAvailable() {
		logger.Warn("synthesized without alignment; rendering will be plain text", "job", jobID)
	}

	mf.Put(path, manifest.Entry{
		ContentHash:  hash,
		JobID:        jobID,
		AudioRef:     completion.AudioRef,
		AlignmentRef: completion.AlignmentRef,
		SyncedAt:     time.Now().UTC(),
	})

	logger.Info("synced", "job", jobID, "alignment", completion.AlignmentAvailable())
	return outcomeSynced
}

// collectMarkdownFiles expands the arguments into a sorted list of markdown
// files. Directories are walked recursively; no arguments means the current
// directory.
func collectMarkdownFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("unable to stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if name := fi.Name(); name != "." && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isMarkdownFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("unable to walk %s: %w", arg, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown", ".mkdn":
		return true
	default:
		return false
	}
}

// Package pipeline wires together the Drive client, transcript parser,
// media linker, group merger, reconciler, and the chosen persistence
// collaborators into one ingestion run (spec sections 5 and 7).
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/tattle-made/whatsapp-scraper/internal/docstore"
	"github.com/tattle-made/whatsapp-scraper/internal/driveclient"
	"github.com/tattle-made/whatsapp-scraper/internal/ledger"
	"github.com/tattle-made/whatsapp-scraper/internal/logger"
	"github.com/tattle-made/whatsapp-scraper/internal/media"
	"github.com/tattle-made/whatsapp-scraper/internal/merge"
	"github.com/tattle-made/whatsapp-scraper/internal/model"
	"github.com/tattle-made/whatsapp-scraper/internal/objectstore"
	"github.com/tattle-made/whatsapp-scraper/internal/reconcile"
	"github.com/tattle-made/whatsapp-scraper/internal/transcript"
)

// SourceType identifies the provenance of a run's input, carried into every
// message's ConversationKey.
const SourceType = "google_drive"

// Options configures one run, mirroring the CLI flags in spec section 6.
type Options struct {
	SkipMedia       bool
	Local           bool
	AssumeYes       bool
	SaltNotRequired bool
}

// DriveSource is the subset of driveclient.Client the pipeline depends on;
// narrowed to an interface so tests can substitute an in-memory fake.
type DriveSource interface {
	ListFolder(ctx context.Context, folderID string) ([]driveclient.RawFile, error)
	Download(ctx context.Context, f *driveclient.RawFile) error
}

// Pipeline holds every external collaborator a run might need. Fields left
// nil are simply unused for the current Options (e.g. ObjectStore is nil in
// --local mode).
type Pipeline struct {
	Drive       DriveSource
	DocStore    docstore.DocStore
	LocalStore  *docstore.LocalStore
	ObjectStore *objectstore.Store
	Ledger      *ledger.Ledger
	Log         *logger.Logger

	Linker   media.Linker
	Group    merge.Group
	Reconcil reconcile.Reconciler
}

// Summary reports what one run accomplished, printed to the user at the end
// (spec's supplemented per-run summary line).
type Summary struct {
	FilesConsidered   int
	TranscriptsParsed int
	MessagesIngested  int
	MediaUploaded     int
	Warnings          int
}

// Run pulls every file from the Drive folder, parses and merges the
// conversation(s) it contains, reconciles against whatever was already
// persisted, and writes the incremental result.
func (p *Pipeline) Run(ctx context.Context, folderURL, sourceLoc string, opts Options) (Summary, error) {
	var sum Summary

	folderID, err := driveclient.FolderIDFromURL(folderURL)
	if err != nil {
		return sum, fmt.Errorf("invalid google drive folder url: %w", err)
	}

	files, err := p.Drive.ListFolder(ctx, folderID)
	if err != nil {
		return sum, err
	}
	sum.FilesConsidered = len(files)

	transcriptFiles, mediaFiles := driveclient.Split(files)

	downloadedMedia, mediaNames, err := p.downloadMedia(ctx, mediaFiles, &sum, opts)
	if err != nil {
		return sum, err
	}

	byGroup := make(map[model.ConversationKey][]model.Message)
	// Ledger entries are written only after every conversation has been
	// merged, reconciled and persisted.
	parsedHashes := make(map[string]string)

	for fileIdx, tf := range transcriptFiles {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if err := p.Drive.Download(ctx, &tf); err != nil {
			p.Log.WarnOnce("transcript-download-failed", "skipping transcript %q: %v", tf.Name, err)
			sum.Warnings++
			continue
		}

		contentHash := hashBytes(tf.Content)
		if p.Ledger != nil {
			seen, err := p.Ledger.AlreadyIngested(tf.ID, contentHash)
			if err != nil {
				p.Log.Warn("ledger lookup failed for %q: %v", tf.Name, err)
			} else if seen {
				p.Log.Info("skipping unchanged transcript %q (already ingested)", tf.Name)
				continue
			}
		}

		msgs, err := transcript.Parse(string(tf.Content), tf.Name, mediaNames, fileIdx, SourceType, sourceLoc)
		if err != nil {
			p.Log.WarnOnce("transcript-parse-failed", "skipping transcript %q: %v", tf.Name, err)
			sum.Warnings++
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		sum.TranscriptsParsed++
		parsedHashes[tf.ID] = contentHash

		textCount, mediaCount := 0, 0
		for _, m := range msgs {
			if m.HasMedia {
				mediaCount++
			} else {
				textCount++
			}
		}
		p.Log.Debug("parsed %q: file_idx=%d hash=%s", tf.Name, fileIdx, contentHash)
		p.Log.Info("processed %d msg(s) from %q (%d text, %d media)", len(msgs), tf.Name, textCount, mediaCount)

		key := msgs[0].Key()
		byGroup[key] = append(byGroup[key], msgs...)
	}

	for key, msgs := range byGroup {
		// Every conversation in this folder shares the same downloaded
		// media pool; the Media Linker keeps only what each one references.
		mediaCopy := make([]model.MediaFile, len(downloadedMedia))
		copy(mediaCopy, downloadedMedia)
		p.Log.Debug("conversation %s: folding %d file(s), %d message(s)", key.GroupID, len(byFileIdx(msgs)), len(msgs))
		if err := p.processConversation(ctx, key, msgs, mediaCopy, opts, &sum); err != nil {
			return sum, fmt.Errorf("conversation %+v: %w", key, err)
		}
	}

	for fileID, hash := range parsedHashes {
		p.recordLedger(fileID, folderID, hash)
	}
	p.Log.FlushWarnCounts()
	return sum, nil
}

// byFileIdx returns the set of distinct FileIdx values in msgs; its length
// is the file count in the pre-merge "merging N files" summary line.
func byFileIdx(msgs []model.Message) map[int]struct{} {
	idxs := make(map[int]struct{})
	for _, m := range msgs {
		idxs[m.FileIdx] = struct{}{}
	}
	return idxs
}

func (p *Pipeline) downloadMedia(ctx context.Context, files []driveclient.RawFile, sum *Summary, opts Options) ([]model.MediaFile, transcript.MediaByName, error) {
	if opts.SkipMedia {
		return nil, transcript.MediaByName{}, nil
	}

	var out []model.MediaFile
	names := make(transcript.MediaByName, len(files))
	for i := range files {
		f := files[i]
		if err := p.Drive.Download(ctx, &f); err != nil {
			p.Log.WarnOnce("media-download-failed", "skipping media file %q: %v", f.Name, err)
			sum.Warnings++
			continue
		}
		out = append(out, model.MediaFile{Name: f.Name, MimeType: f.MimeType, Content: f.Content})
		names[f.Name] = struct{}{}
	}
	return out, names, nil
}

// processConversation runs the Media Linker, Group Merger, and Reconciler
// for one conversation and persists the result. The Media Linker runs
// before the Group Merger, since merge-winner ranking depends on whether
// media has already been resolved.
func (p *Pipeline) processConversation(ctx context.Context, key model.ConversationKey, msgs []model.Message, mediaFiles []model.MediaFile, opts Options, sum *Summary) error {
	p.Linker.OnUnreferenced = func(n int) {
		p.Log.Warn("conversation %s: %d media file(s) referenced by no message, dropped", key.GroupID, n)
		sum.Warnings += n
	}
	kept, err := p.Linker.Link(msgs, mediaFiles)
	if err != nil {
		return fmt.Errorf("link media: %w", err)
	}

	fileCount := len(byFileIdx(msgs))
	p.Log.Info("conversation %s: merging %d file(s), %d message(s) total", key.GroupID, fileCount, len(msgs))
	canonical, err := p.Group.Merge(msgs)
	if err != nil {
		return fmt.Errorf("merge group: %w", err)
	}
	p.Log.Info("conversation %s: merged %d file(s) with an avg of %d message(s) to %d message(s)",
		key.GroupID, fileCount, len(msgs)/maxInt(fileCount, 1), len(canonical))

	if opts.Local {
		return p.persistLocal(key, canonical, kept, opts, sum)
	}
	return p.persistServer(ctx, key, canonical, kept, opts, sum)
}

func (p *Pipeline) persistLocal(key model.ConversationKey, canonical []model.Message, mediaFiles []model.MediaFile, opts Options, sum *Summary) error {
	persisted, err := p.LocalStore.Existing(context.Background(), key)
	if err != nil {
		return err
	}
	full, tail, err := p.Reconcil.Reconcile(persisted, canonical)
	if err != nil {
		return fmt.Errorf("reconcile local history: %w", err)
	}
	if err := p.LocalStore.Persist(context.Background(), key, full); err != nil {
		return err
	}
	sum.MessagesIngested += len(tail)

	if opts.SkipMedia {
		return nil
	}
	if err := p.LocalStore.PersistMedia(key, mediaFiles); err != nil {
		return err
	}
	sum.MediaUploaded += len(mediaFiles)
	return nil
}

func (p *Pipeline) persistServer(ctx context.Context, key model.ConversationKey, canonical []model.Message, mediaFiles []model.MediaFile, opts Options, sum *Summary) error {
	persisted, err := p.DocStore.Existing(ctx, key)
	if err != nil {
		return err
	}
	_, tail, err := p.Reconcil.Reconcile(persisted, canonical)
	if err != nil {
		return fmt.Errorf("reconcile server history: %w", err)
	}
	if err := p.DocStore.Persist(ctx, key, tail); err != nil {
		return err
	}
	sum.MessagesIngested += len(tail)

	if opts.SkipMedia || p.ObjectStore == nil {
		return nil
	}
	tailMediaHashes := make(map[string]bool)
	for _, m := range tail {
		if m.MediaUploadLoc != nil {
			tailMediaHashes[*m.MediaUploadLoc] = true
		}
	}
	for _, f := range mediaFiles {
		if !tailMediaHashes[f.Hash] {
			continue
		}
		mime := f.MimeType
		if err := p.ObjectStore.Put(ctx, f.Hash, mime, f.Content); err != nil {
			return fmt.Errorf("upload media %q: %w", f.Name, err)
		}
		sum.MediaUploaded++
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// recordLedger marks a file as ingested so a later run can skip it.
func (p *Pipeline) recordLedger(fileID, folderID, hash string) {
	if p.Ledger == nil {
		return
	}
	if err := p.Ledger.Record(fileID, folderID, hash, time.Now()); err != nil {
		p.Log.Warn("failed to record ledger entry for %q: %v", fileID, err)
	}
}

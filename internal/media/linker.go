// Package media resolves the MediaFile records an export ships alongside
// its transcripts against the messages that actually reference them (spec
// section 4.4).
package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

// Linker drops media files no message attaches, hashes the ones that
// remain, and stamps media messages with their hash and MIME type.
type Linker struct {
	// OnUnreferenced is called once with the count of media files dropped
	// because no message referenced them. Optional; wired to the CLI's
	// warning summary.
	OnUnreferenced func(count int)
}

// Link mutates msgs in place, setting MediaUploadLoc/MediaMimeType on every
// media-bearing message, and returns the subset of mediaFiles that were
// actually referenced (with Hash populated). Per spec section 9 this must
// run before the Group Merger, since merge() ranks candidates partly on
// whether media resolution has happened.
func (l *Linker) Link(msgs []model.Message, mediaFiles []model.MediaFile) ([]model.MediaFile, error) {
	byName := make(map[string]*model.MediaFile, len(mediaFiles))
	files := make([]model.MediaFile, len(mediaFiles))
	copy(files, mediaFiles)
	for i := range files {
		if files[i].PlaceholderID == "" {
			files[i].PlaceholderID = uuid.New().String()
		}
		byName[files[i].Name] = &files[i]
	}

	referenced := make(map[string]bool)
	for i := range msgs {
		if !msgs[i].HasMedia {
			continue
		}
		name := msgs[i].MediaFileName()
		if name == "" {
			continue
		}
		referenced[name] = true
	}

	var kept []model.MediaFile
	dropped := 0
	for _, f := range files {
		if !referenced[f.Name] {
			dropped++
			continue
		}
		hashed, err := hashContent(f)
		if err != nil {
			return nil, fmt.Errorf("failed to hash media file %q: %w", f.Name, err)
		}
		kept = append(kept, hashed)
	}
	if dropped > 0 && l.OnUnreferenced != nil {
		l.OnUnreferenced(dropped)
	}

	hashByName := make(map[string]model.MediaFile, len(kept))
	for _, f := range kept {
		hashByName[f.Name] = f
	}

	for i := range msgs {
		if !msgs[i].HasMedia {
			continue
		}
		f, ok := hashByName[msgs[i].MediaFileName()]
		if !ok {
			// Referenced media was dropped by an upstream filter; downgrade
			// back to a plain text message rather than leave a dangling
			// media_upload_loc (spec section 3 invariant).
			msgs[i].HasMedia = false
			continue
		}
		hash := f.Hash
		mime := resolveMimeType(f)
		msgs[i].MediaUploadLoc = &hash
		msgs[i].MediaMimeType = &mime
	}

	return kept, nil
}

func hashContent(f model.MediaFile) (model.MediaFile, error) {
	sum := sha256.Sum256(f.Content)
	f.Hash = hex.EncodeToString(sum[:])
	return f, nil
}

// resolveMimeType returns the file's declared MIME type, falling back to
// content-sniffing (the export's own type tag is sometimes missing or
// generic, e.g. "application/octet-stream").
func resolveMimeType(f model.MediaFile) string {
	if f.MimeType != "" && f.MimeType != "application/octet-stream" {
		return f.MimeType
	}
	kind, err := filetype.Match(f.Content)
	if err != nil || kind == filetype.Unknown {
		if f.MimeType != "" {
			return f.MimeType
		}
		return "application/octet-stream"
	}
	return kind.MIME.Value
}

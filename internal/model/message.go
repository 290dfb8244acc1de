// Package model defines the normalized record types shared by the parser,
// the media linker, and the merge engine.
package model

import (
	"math"
	"time"
)

// DeletedThis is the text WhatsApp substitutes when a sender deletes a
// message after sending it.
const DeletedThis = "This message was deleted"

// MediaOmitted is the text WhatsApp substitutes for a media message whose
// attachment was never exported (e.g. view-once media, or media that
// expired before the chat was exported).
const MediaOmitted = "<Media omitted>"

// deletionSentinels is the set of contents treated as "not original" —
// placeholders left behind when a message's real content is gone.
var deletionSentinels = map[string]bool{
	DeletedThis:  true,
	MediaOmitted: true,
}

// domainEqualWindow is the maximum datetime skew (spec section 9, "Message
// equality is a domain equivalence relation") two otherwise-identical
// messages may have and still be considered the same logical message.
const domainEqualWindow = 120 * time.Second

// Message is the single concrete record produced by the Transcript Parser
// and consumed by every later stage. Optional fields are nil until the
// Media Linker fills them in.
type Message struct {
	DT               time.Time
	SenderID         string
	GroupID          string
	SourceType       string
	SourceLoc        string
	Content          string
	HasMedia         bool
	MediaMimeType    *string
	MediaUploadLoc   *string
	Order          int
	FileIdx        int
	FileDatetime   time.Time
	mediaFileName  string // set by the parser, consumed by the media linker; not part of any equality check
}

// MediaFileName returns the filename of the attached media, or "" if this
// message has no (pending) media attachment. Used only by the Media Linker.
func (m *Message) MediaFileName() string {
	return m.mediaFileName
}

// SetMediaFileName records the filename a "(file attached)" message refers
// to, before the Media Linker has resolved it to a hash.
func (m *Message) SetMediaFileName(name string) {
	m.mediaFileName = name
}

// IsOriginal reports whether Content is real content rather than a
// deletion/omission placeholder left by WhatsApp's own export.
func (m *Message) IsOriginal() bool {
	return !deletionSentinels[m.Content]
}

// Key returns the ConversationKey this message belongs to.
func (m *Message) Key() ConversationKey {
	return ConversationKey{
		SourceType: m.SourceType,
		SourceLoc:  m.SourceLoc,
		GroupID:    m.GroupID,
	}
}

// Equal is the domain equivalence relation used by the reconciler's prefix
// check: same group, sender and content, with datetimes within 120s of
// each other. This is deliberately looser than structural equality so that
// minute-resolution re-exports of the same message still compare equal.
func (m *Message) Equal(other *Message) bool {
	if other == nil {
		return false
	}
	if m.GroupID != other.GroupID || m.SenderID != other.SenderID || m.Content != other.Content {
		return false
	}
	delta := m.DT.Sub(other.DT)
	return math.Abs(delta.Seconds()) <= domainEqualWindow.Seconds()
}

// StructuralEqual compares every serialized field exactly, for comparing
// expected vs. actual output; the reconciler uses Equal instead, and the
// Pairwise Merger pairs messages with its own checks (merge.checkMatch).
func (m *Message) StructuralEqual(other *Message) bool {
	if other == nil {
		return false
	}
	return m.DT.Equal(other.DT) &&
		m.SenderID == other.SenderID &&
		m.GroupID == other.GroupID &&
		m.SourceType == other.SourceType &&
		m.SourceLoc == other.SourceLoc &&
		m.Content == other.Content &&
		m.HasMedia == other.HasMedia &&
		ptrStringEqual(m.MediaMimeType, other.MediaMimeType) &&
		ptrStringEqual(m.MediaUploadLoc, other.MediaUploadLoc) &&
		m.Order == other.Order
}

func ptrStringEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// contentRank captures "how good is this representation" per spec section
// 4.5: original beats deleted, has_media beats no media, an uploaded copy
// beats a media message still missing its upload location, and a media
// attachment in general beats plain text carrying only the filename.
type contentRank struct {
	isOriginal      bool
	hasMedia        bool
	hasMediaUpload  bool
	hasMediaFile    bool
}

func rankOf(m *Message) contentRank {
	return contentRank{
		isOriginal:     m.IsOriginal(),
		hasMedia:       m.HasMedia,
		hasMediaUpload: m.MediaUploadLoc != nil,
		hasMediaFile:   m.mediaFileName != "",
	}
}

// less reports whether a ranks strictly worse than b under the ordered key
// (is_original, has_media, has_media_upload_loc, has_media_file_attached) —
// higher wins, so "less" means a loses to b.
func (a contentRank) less(b contentRank) bool {
	if a.isOriginal != b.isOriginal {
		return b.isOriginal
	}
	if a.hasMedia != b.hasMedia {
		return b.hasMedia
	}
	if a.hasMediaUpload != b.hasMediaUpload {
		return b.hasMediaUpload
	}
	if a.hasMediaFile != b.hasMediaFile {
		return b.hasMediaFile
	}
	return false
}

// Merge combines two representations of what the Pairwise Merger has
// decided is the same logical message, keeping the richer one's content and
// media fields (spec section 4.5). Both messages must already belong to the
// same sender and group.
func (m *Message) Merge(other *Message) Message {
	winner := m
	if rankOf(m).less(rankOf(other)) {
		winner = other
	}
	return Message{
		DT:             winner.DT,
		SenderID:       m.SenderID,
		GroupID:        m.GroupID,
		SourceType:     winner.SourceType,
		SourceLoc:      winner.SourceLoc,
		Content:        winner.Content,
		HasMedia:       winner.HasMedia,
		MediaMimeType:  winner.MediaMimeType,
		MediaUploadLoc: winner.MediaUploadLoc,
		FileDatetime:   winner.FileDatetime,
		FileIdx:        winner.FileIdx,
		mediaFileName:  winner.mediaFileName,
	}
}

// MediaFile is a loose attachment pulled from the export alongside the
// transcripts. Hash is empty until the Media Linker has processed it.
type MediaFile struct {
	Name string
	// PlaceholderID identifies this file before its content hash is known
	// (assigned by the Media Linker when the file enters Link), mirroring the original
	// scraper's uuid.uuid4() per-file id used for temp storage and logging
	// ahead of the real, hash-addressed storage key.
	PlaceholderID string
	MimeType      string
	Content       []byte
	Hash          string
}

// ConversationKey groups messages for merging, per spec section 3.
type ConversationKey struct {
	SourceType string
	SourceLoc  string
	GroupID    string
}

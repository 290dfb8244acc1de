package media

import (
	"testing"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

func withMediaName(m model.Message, name string) model.Message {
	m.SetMediaFileName(name)
	return m
}

func TestLinkDropsUnreferencedFiles(t *testing.T) {
	msgs := []model.Message{
		withMediaName(model.Message{HasMedia: true, Content: "IMG-W0.jpg (file attached)"}, "IMG-W0.jpg"),
		{Content: "Neat photo"},
	}
	files := []model.MediaFile{
		{Name: "IMG-W0.jpg", MimeType: "image/jpeg", Content: []byte("jpeg-bytes")},
		{Name: "IMG-W2.jpg", MimeType: "image/jpeg", Content: []byte("other-bytes")},
	}

	var droppedCount int
	l := &Linker{OnUnreferenced: func(n int) { droppedCount = n }}

	kept, err := l.Link(msgs, files)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	if len(kept) != 1 || kept[0].Name != "IMG-W0.jpg" {
		t.Fatalf("expected only IMG-W0.jpg to be kept, got %+v", kept)
	}
	if kept[0].Hash == "" {
		t.Errorf("kept file should have a computed hash")
	}
	if droppedCount != 1 {
		t.Errorf("OnUnreferenced count = %d, want 1", droppedCount)
	}

	if msgs[0].MediaUploadLoc == nil || *msgs[0].MediaUploadLoc != kept[0].Hash {
		t.Errorf("msgs[0].MediaUploadLoc should be set to the kept file's hash")
	}
	if msgs[0].MediaMimeType == nil || *msgs[0].MediaMimeType != "image/jpeg" {
		t.Errorf("msgs[0].MediaMimeType should be the file's declared mime type")
	}
}

func TestLinkDowngradesMessageWhoseFileWasNeverProvided(t *testing.T) {
	msgs := []model.Message{
		withMediaName(model.Message{HasMedia: true, Content: "IMG-missing.jpg (file attached)"}, "IMG-missing.jpg"),
	}
	l := &Linker{}

	kept, err := l.Link(msgs, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(kept) != 0 {
		t.Fatalf("expected no files kept, got %+v", kept)
	}
	if msgs[0].HasMedia {
		t.Errorf("message referencing a never-provided file should be downgraded to HasMedia=false")
	}
	if msgs[0].MediaUploadLoc != nil {
		t.Errorf("downgraded message should not carry a media_upload_loc")
	}
}

func TestResolveMimeTypeSniffsWhenDeclaredTypeIsGeneric(t *testing.T) {
	// A minimal PNG signature is enough for filetype.Match to recognize it.
	pngSig := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	f := model.MediaFile{Name: "blob", MimeType: "application/octet-stream", Content: pngSig}
	got := resolveMimeType(f)
	if got != "image/png" {
		t.Errorf("resolveMimeType = %q, want image/png", got)
	}
}

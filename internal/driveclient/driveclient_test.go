package driveclient

import "testing"

func TestFolderIDFromURL(t *testing.T) {
	cases := []struct {
		url     string
		wantID  string
		wantErr bool
	}{
		{"https://drive.google.com/drive/folders/1AbCdEf23456", "1AbCdEf23456", false},
		{"drive.google.com/drive/u/0/folders/xyz_789-ABC", "xyz_789-ABC", false},
		{"https://example.com/not-a-drive-link", "", true},
	}
	for _, c := range cases {
		got, err := FolderIDFromURL(c.url)
		if c.wantErr {
			if err == nil {
				t.Errorf("FolderIDFromURL(%q): expected error", c.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("FolderIDFromURL(%q): unexpected error %v", c.url, err)
		}
		if got != c.wantID {
			t.Errorf("FolderIDFromURL(%q) = %q, want %q", c.url, got, c.wantID)
		}
	}
}

func TestSplitSeparatesTranscriptsFromMedia(t *testing.T) {
	files := []RawFile{
		{Name: "WhatsApp Chat with Test Group.txt", MimeType: "text/plain"},
		{Name: "IMG-001.jpg", MimeType: "image/jpeg"},
		{Name: "notes.txt", MimeType: "text/plain"}, // plain text but not a chat export
	}
	transcripts, media := Split(files)
	if len(transcripts) != 1 || transcripts[0].Name != "WhatsApp Chat with Test Group.txt" {
		t.Errorf("expected exactly one transcript, got %+v", transcripts)
	}
	if len(media) != 2 {
		t.Errorf("expected 2 media files, got %+v", media)
	}
}

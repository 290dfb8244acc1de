// Package driveclient pulls a conversation export's files from a Google
// Drive folder and splits them into transcripts and media (spec section 4.1
// / 6). Credential-mode detection (service account vs. installed-app OAuth)
// follows the original scraper: a service account key file carries its own
// "type" field, an OAuth client secret doesn't.
package driveclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

var scopes = []string{drive.DriveReadonlyScope}

// folderURLPattern extracts the folder id from a Drive share URL, e.g.
// "https://drive.google.com/drive/folders/<id>".
var folderURLPattern = regexp.MustCompile(`drive\.google\.com/.*?/folders/(?P<id>[a-zA-Z0-9_-]+)`)

// ErrInvalidFolderURL is returned by FolderIDFromURL when the URL doesn't
// look like a Drive folder share link.
var ErrInvalidFolderURL = fmt.Errorf("not a recognizable Google Drive folder url")

// FolderIDFromURL extracts the folder id a run was pointed at.
func FolderIDFromURL(url string) (string, error) {
	m := folderURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", ErrInvalidFolderURL
	}
	idx := folderURLPattern.SubexpIndex("id")
	return m[idx], nil
}

// RawFile is one item pulled from the folder, not yet classified.
type RawFile struct {
	ID       string
	Name     string
	MimeType string
	Content  []byte
}

// Client lists and downloads the contents of one Drive folder.
type Client struct {
	svc *drive.Service
}

// New builds a Client, choosing the service-account or OAuth installed-app
// flow based on the credential file's contents.
func New(ctx context.Context, credentialsPath, tokenPath string) (*Client, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}

	if isServiceAccount(raw) {
		svc, err := drive.NewService(ctx, option.WithCredentialsJSON(raw))
		if err != nil {
			return nil, fmt.Errorf("build drive service from service account: %w", err)
		}
		return &Client{svc: svc}, nil
	}

	svc, err := installedAppService(ctx, raw, tokenPath)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

func isServiceAccount(credentialsJSON []byte) bool {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(credentialsJSON, &probe); err != nil {
		return false
	}
	return probe.Type == "service_account"
}

func installedAppService(ctx context.Context, credentialsJSON []byte, tokenPath string) (*drive.Service, error) {
	config, err := google.ConfigFromJSON(credentialsJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client secret: %w", err)
	}

	token, err := readCachedToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("oauth token for installed-app flow not found at %q; "+
			"run the drive authorization flow out of band and place the resulting "+
			"token there: %w", tokenPath, err)
	}

	return drive.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
}

// ListFolder returns every file Drive reports as a child of folderID,
// paging through results as the original scraper did.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]RawFile, error) {
	var out []RawFile
	q := fmt.Sprintf("%q in parents and trashed=false", folderID)

	call := c.svc.Files.List().Context(ctx).Q(q).Fields("nextPageToken, files(id, name, mimeType)")
	pageToken := ""
	for {
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder %q: %w", folderID, err)
		}
		for _, f := range resp.Files {
			out = append(out, RawFile{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return out, nil
}

// Download fetches a file's content in place.
func (c *Client) Download(ctx context.Context, f *RawFile) error {
	resp, err := c.svc.Files.Get(f.ID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("download drive file %q: %w", f.Name, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read drive file %q: %w", f.Name, err)
	}
	f.Content = content
	return nil
}

// TranscriptFilePrefix is the naming convention WhatsApp uses for the
// exported chat log within a conversation folder.
const TranscriptFilePrefix = "WhatsApp Chat with "

// Split separates text/plain transcript exports from everything else
// (media), per spec section 4.1.
func Split(files []RawFile) (transcripts, media []RawFile) {
	for _, f := range files {
		if f.MimeType == "text/plain" && strings.HasPrefix(f.Name, TranscriptFilePrefix) {
			transcripts = append(transcripts, f)
		} else {
			media = append(media, f)
		}
	}
	return transcripts, media
}

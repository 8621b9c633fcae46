package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/ports"
)

const (
	uploadVideoURL     = "https://www.googleapis.com/upload/youtube/v3/videos?uploadType=multipart&part=snippet,status"
	captionsInsertURL  = "https://www.googleapis.com/upload/youtube/v3/captions?uploadType=multipart&part=snippet"
	thumbnailSetURL    = "https://www.googleapis.com/upload/youtube/v3/thumbnails/set?videoId=%s"
	playlistItemsURL   = "https://www.googleapis.com/youtube/v3/playlistItems?part=snippet"
)

// Uploader implements ports.Uploader against the YouTube Data API v3.
type Uploader struct {
	tokens *tokenSource
	http   *http.Client
}

// NewUploader builds an Uploader authenticating with creds.
func NewUploader(creds Credentials) *Uploader {
	client := http.DefaultClient
	return &Uploader{tokens: newTokenSource(creds, client), http: client}
}

var _ ports.Uploader = (*Uploader)(nil)

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

type videoStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type videoInsertMetadata struct {
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

type videoInsertResponse struct {
	ID string `json:"id"`
}

// Upload creates a new video via a multipart (metadata + media) request,
// the simplest of the Data API's two upload strategies and sufficient for
// the file sizes a single capture session produces.
func (u *Uploader) Upload(ctx context.Context, videoPath string, meta ports.UploadMetadata) (string, error) {
	metaJSON, err := json.Marshal(videoInsertMetadata{
		Snippet: videoSnippet{Title: meta.Title, Description: meta.Description, Tags: meta.Tags},
		Status:  videoStatus{PrivacyStatus: meta.Privacy},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "encode YouTube video metadata", err)
	}

	var resp videoInsertResponse
	if err := u.multipartUpload(ctx, uploadVideoURL, metaJSON, videoPath, "video/mp4", &resp); err != nil {
		return "", err
	}

	if meta.PlaylistID != "" {
		if err := u.AddToPlaylist(ctx, resp.ID, meta.PlaylistID); err != nil {
			return resp.ID, err
		}
	}
	return resp.ID, nil
}

type captionSnippet struct {
	VideoID  string `json:"videoId"`
	Language string `json:"language"`
	Name     string `json:"name"`
}

type captionInsertMetadata struct {
	Snippet captionSnippet `json:"snippet"`
}

// UploadCaption attaches an SRT subtitle track to an already-uploaded video.
func (u *Uploader) UploadCaption(ctx context.Context, videoID, subtitlePath, lang, name string) error {
	metaJSON, err := json.Marshal(captionInsertMetadata{
		Snippet: captionSnippet{VideoID: videoID, Language: lang, Name: name},
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode YouTube caption metadata", err)
	}
	return u.multipartUpload(ctx, captionsInsertURL, metaJSON, subtitlePath, "application/octet-stream", nil)
}

// UploadThumbnail sets a video's custom thumbnail image.
func (u *Uploader) UploadThumbnail(ctx context.Context, videoID string, thumbnailPNG []byte) error {
	token, err := u.tokens.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(thumbnailSetURL, videoID), bytes.NewReader(thumbnailPNG))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build YouTube thumbnail request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "image/png")

	return u.do(req, nil)
}

type playlistResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type playlistSnippet struct {
	PlaylistID string             `json:"playlistId"`
	ResourceID playlistResourceID `json:"resourceId"`
}

type playlistInsertBody struct {
	Snippet playlistSnippet `json:"snippet"`
}

// AddToPlaylist appends a video to an existing playlist.
func (u *Uploader) AddToPlaylist(ctx context.Context, videoID, playlistID string) error {
	body, err := json.Marshal(playlistInsertBody{
		Snippet: playlistSnippet{
			PlaylistID: playlistID,
			ResourceID: playlistResourceID{Kind: "youtube#video", VideoID: videoID},
		},
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode YouTube playlist item", err)
	}

	token, err := u.tokens.accessToken(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playlistItemsURL, bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build YouTube playlist request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return u.do(req, nil)
}

// multipartUpload POSTs a metadata JSON part plus a file's contents as a
// second part, the Data API's standard "multipart" upload shape shared by
// videos.insert and captions.insert.
func (u *Uploader) multipartUpload(ctx context.Context, endpoint string, metaJSON []byte, filePath, contentType string, out any) error {
	token, err := u.tokens.accessToken(ctx)
	if err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "open upload file", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaPart, err := writer.CreatePart(partHeader("application/json"))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build multipart metadata part", err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return apperr.Wrap(apperr.KindInternal, "write multipart metadata part", err)
	}

	mediaPart, err := writer.CreatePart(partHeader(contentType))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build multipart media part", err)
	}
	if _, err := io.Copy(mediaPart, file); err != nil {
		return apperr.Wrap(apperr.KindInternal, "write multipart media part", err)
	}
	if err := writer.Close(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "close multipart writer", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build YouTube upload request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	return u.do(req, out)
}

func (u *Uploader) do(req *http.Request, out any) error {
	resp, err := u.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindAuthentication, "call YouTube API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return apperr.New(apperr.KindAuthentication, fmt.Sprintf("YouTube API が失敗しました: %s: %s", resp.Status, string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindInternal, "decode YouTube API response", err)
	}
	return nil
}

func partHeader(contentType string) map[string][]string {
	return map[string][]string{"Content-Type": {contentType}}
}

package httpapi

import (
	"context"
	"encoding/base64"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/asset"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

var validate = validator.New()

// assetID round-trips a filesystem path through a path-segment-safe
// encoding, since recorded/edited asset ids in this codebase ARE their
// video paths (asset.Repository has no separate surrogate key).
func encodeAssetID(videoPath string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(videoPath))
}

func decodeAssetID(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", apperr.Validation("id", "malformed asset id")
	}
	return string(raw), nil
}

// AssetsHandler exposes asset.Repository's recorded/edited list and delete
// plus recorded-asset subtitle and metadata access; thumbnails are not
// served.
type AssetsHandler struct {
	repo *asset.Repository
}

// NewAssetsHandler wraps repo.
func NewAssetsHandler(repo *asset.Repository) *AssetsHandler {
	return &AssetsHandler{repo: repo}
}

// Register wires every /assets/* operation into api.
func (h *AssetsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listRecordedAssets", Method: "GET", Path: "/assets/recorded",
		Summary: "List recorded assets awaiting edit", Tags: []string{"Assets"},
	}, h.listRecorded)

	huma.Register(api, huma.Operation{
		OperationID: "deleteRecordedAsset", Method: "DELETE", Path: "/assets/recorded/{id}",
		Summary: "Delete a recorded asset and its sidecars", Tags: []string{"Assets"},
	}, h.deleteRecorded)

	huma.Register(api, huma.Operation{
		OperationID: "getRecordedMetadata", Method: "GET", Path: "/assets/recorded/{id}/metadata",
		Summary: "Recorded asset metadata", Tags: []string{"Assets"},
	}, h.getRecordedMetadata)

	huma.Register(api, huma.Operation{
		OperationID: "updateRecordedMetadata", Method: "PUT", Path: "/assets/recorded/{id}/metadata",
		Summary: "Overwrite recorded asset metadata", Tags: []string{"Assets"},
	}, h.updateRecordedMetadata)

	huma.Register(api, huma.Operation{
		OperationID: "getRecordedSubtitle", Method: "GET", Path: "/assets/recorded/{id}/subtitle",
		Summary: "Recorded asset subtitle (SRT) contents", Tags: []string{"Assets"},
	}, h.getRecordedSubtitle)

	huma.Register(api, huma.Operation{
		OperationID: "updateRecordedSubtitle", Method: "PUT", Path: "/assets/recorded/{id}/subtitle",
		Summary: "Overwrite recorded asset subtitle (SRT) contents", Tags: []string{"Assets"},
	}, h.updateRecordedSubtitle)

	huma.Register(api, huma.Operation{
		OperationID: "listEditedAssets", Method: "GET", Path: "/assets/edited",
		Summary: "List finished, edited assets", Tags: []string{"Assets"},
	}, h.listEdited)

	huma.Register(api, huma.Operation{
		OperationID: "deleteEditedAsset", Method: "DELETE", Path: "/assets/edited/{id}",
		Summary: "Delete an edited asset and its sidecars", Tags: []string{"Assets"},
	}, h.deleteEdited)
}

// AssetResponse is one video asset's wire representation. ID is the
// opaque identifier the other /assets/{recorded,edited}/{id}/* routes
// expect; Path is shown for operator convenience only (never accepted
// back as input, so a client can't smuggle an arbitrary filesystem path).
type AssetResponse struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	HasSubtitle  bool   `json:"has_subtitle"`
	HasThumbnail bool   `json:"has_thumbnail"`
}

func assetResponseFrom(a model.VideoAsset) AssetResponse {
	return AssetResponse{
		ID:           encodeAssetID(a.VideoPath),
		Path:         a.VideoPath,
		HasSubtitle:  a.SubtitlePath != nil,
		HasThumbnail: a.ThumbnailPath != nil,
	}
}

type listAssetsOutput struct {
	Body struct {
		Assets []AssetResponse `json:"assets"`
	}
}

type assetIDInput struct {
	ID string `path:"id"`
}

func (h *AssetsHandler) listRecorded(_ context.Context, _ *struct{}) (*listAssetsOutput, error) {
	assets, err := h.repo.ListRecordings()
	if err != nil {
		return nil, mapError(err)
	}
	out := &listAssetsOutput{}
	out.Body.Assets = make([]AssetResponse, len(assets))
	for i, a := range assets {
		out.Body.Assets[i] = assetResponseFrom(a)
	}
	return out, nil
}

func (h *AssetsHandler) listEdited(_ context.Context, _ *struct{}) (*listAssetsOutput, error) {
	assets, err := h.repo.ListEdited()
	if err != nil {
		return nil, mapError(err)
	}
	out := &listAssetsOutput{}
	out.Body.Assets = make([]AssetResponse, len(assets))
	for i, a := range assets {
		out.Body.Assets[i] = assetResponseFrom(a)
	}
	return out, nil
}

func (h *AssetsHandler) deleteRecorded(_ context.Context, input *assetIDInput) (*struct{}, error) {
	path, err := decodeAssetID(input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := h.repo.DeleteRecording(path); err != nil {
		return nil, mapError(err)
	}
	return nil, nil
}

func (h *AssetsHandler) deleteEdited(_ context.Context, input *assetIDInput) (*struct{}, error) {
	path, err := decodeAssetID(input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := h.repo.DeleteEdited(path); err != nil {
		return nil, mapError(err)
	}
	return nil, nil
}

type metadataOutput struct {
	Body map[string]string `json:"metadata"`
}

func (h *AssetsHandler) getRecordedMetadata(_ context.Context, input *assetIDInput) (*metadataOutput, error) {
	path, err := decodeAssetID(input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	data, ok := h.repo.GetMetadataDict(path)
	if !ok {
		return nil, mapError(apperr.New(apperr.KindNotFound, "asset metadata not found"))
	}
	return &metadataOutput{Body: data}, nil
}

// updateMetadataInput's Body is deliberately a map rather than a typed
// struct: spec.md §4.H's metadata sidecar is a flat string map, and the
// manual-edit merge machinery (internal/recording) only ever deals in
// field-name/value pairs, never a fixed schema.
type updateMetadataInput struct {
	ID   string            `path:"id"`
	Body map[string]string `required:"true"`
}

func (h *AssetsHandler) updateRecordedMetadata(_ context.Context, input *updateMetadataInput) (*struct{}, error) {
	if len(input.Body) == 0 {
		return nil, mapError(apperr.Validation("metadata", "at least one field is required"))
	}
	path, err := decodeAssetID(input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := h.repo.SaveMetadataDict(path, input.Body); err != nil {
		return nil, mapError(err)
	}
	return nil, nil
}

type subtitleOutput struct {
	Body struct {
		Content string `json:"content"`
	}
}

func (h *AssetsHandler) getRecordedSubtitle(_ context.Context, input *assetIDInput) (*subtitleOutput, error) {
	path, err := decodeAssetID(input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	content, ok := h.repo.GetSubtitle(path)
	if !ok {
		return nil, mapError(apperr.New(apperr.KindNotFound, "subtitle not found"))
	}
	out := &subtitleOutput{}
	out.Body.Content = content
	return out, nil
}

type updateSubtitleInput struct {
	ID   string `path:"id"`
	Body struct {
		Content string `json:"content" validate:"required"`
	}
}

func (h *AssetsHandler) updateRecordedSubtitle(_ context.Context, input *updateSubtitleInput) (*struct{}, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, mapError(apperr.Wrap(apperr.KindValidation, "invalid subtitle payload", err))
	}
	path, err := decodeAssetID(input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := h.repo.SaveSubtitle(path, input.Body.Content); err != nil {
		return nil, mapError(err)
	}
	return nil, nil
}

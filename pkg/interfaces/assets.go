package interfaces

import "context"

// AssetPipeline resolves pending binary attachments referenced by edited
// fields into their persisted reference shape before a save touches the
// remote store. Input and output are keyed componentID -> fieldName -> value.
type AssetPipeline interface {
	ProcessPendingUploads(ctx context.Context, formData map[string]map[string]any) (map[string]map[string]any, error)
}

// NoOpAssetPipeline satisfies AssetPipeline for setups without binary
// uploads.
type NoOpAssetPipeline struct{}

func (NoOpAssetPipeline) ProcessPendingUploads(_ context.Context, formData map[string]map[string]any) (map[string]map[string]any, error) {
	return formData, nil
}

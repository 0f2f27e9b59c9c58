package azure

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/Chapsvision-dev/dataset-ingest/internal/provider"
)

type AzureProvider struct {
	client    blobAPI
	container string
}

var _ provider.Provider = (*AzureProvider)(nil)

func newProvider(client blobAPI, containerName string) *AzureProvider {
	return &AzureProvider{client: client, container: containerName}
}

func (p *AzureProvider) Name() string      { return "azure" }
func (p *AzureProvider) Container() string { return p.container }

// Put uploads data as a block blob. Existing blobs are overwritten.
func (p *AzureProvider) Put(ctx context.Context, key string, data []byte) error {
	key = normalizeKey(key)
	start := time.Now()
	log.Debug().Str("action", "azure_upload").Str("container", p.container).Str("key", key).
		Int("bytes", len(data)).Msg("starting upload")

	if _, err := p.client.UploadBuffer(ctx, p.container, key, data, nil); err != nil {
		log.Debug().Err(err).Str("action", "azure_upload").Str("container", p.container).Str("key", key).
			Msg("upload failed")
		return err
	}

	log.Info().Str("action", "azure_upload").Str("container", p.container).Str("key", key).
		Str("size", humanize.IBytes(uint64(len(data)))).Dur("elapsed_ms", time.Since(start)).Msg("upload OK")
	return nil
}

// List pages through every blob in the container.
func (p *AzureProvider) List(ctx context.Context) ([]provider.Object, error) {
	var out []provider.Object
	pager := p.client.NewListBlobsFlatPager(p.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if page.Segment == nil {
			continue
		}
		out = append(out, objectsOf(page.Segment.BlobItems)...)
	}
	log.Debug().Str("action", "azure_list").Str("container", p.container).Int("objects", len(out)).Msg("list OK")
	return out, nil
}

func objectsOf(items []*container.BlobItem) []provider.Object {
	out := make([]provider.Object, 0, len(items))
	for _, it := range items {
		if it == nil || it.Name == nil {
			continue
		}
		obj := provider.Object{Key: *it.Name}
		if it.Properties != nil && it.Properties.ContentLength != nil {
			obj.Size = *it.Properties.ContentLength
		}
		out = append(out, obj)
	}
	return out
}

func normalizeKey(k string) string {
	return strings.TrimPrefix(k, "/")
}

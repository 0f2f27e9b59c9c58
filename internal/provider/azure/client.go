package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/Chapsvision-dev/dataset-ingest/internal/config"
	"github.com/Chapsvision-dev/dataset-ingest/internal/provider"
)

// blobAPI is the subset of *azblob.Client the provider uses.
type blobAPI interface {
	CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
	NewListBlobsFlatPager(containerName string, o *azblob.ListBlobsFlatOptions) *runtime.Pager[azblob.ListBlobsFlatResponse]
}

// Build client from the storage account connection string.
func newClientFromConfig(c config.Config) (*azblob.Client, error) {
	if c.Azure.ConnectionString == "" {
		return nil, &config.MissingError{Key: "AZURE_STORAGE_CONNECTION_STRING"}
	}
	cl, err := azblob.NewClientFromConnectionString(c.Azure.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure: connect: %w", err)
	}
	return cl, nil
}

func init() {
	provider.Register(config.SinkAzure, func(cfg any) (provider.Provider, error) {
		c, ok := cfg.(config.Config)
		if !ok {
			return nil, fmt.Errorf("azure: invalid config type")
		}
		client, err := newClientFromConfig(c)
		if err != nil {
			return nil, err
		}
		return newProvider(client, c.Azure.Container), nil
	})
}

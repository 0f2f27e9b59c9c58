package azure

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// EnsureContainer creates the container; ContainerAlreadyExists counts as success.
func (p *AzureProvider) EnsureContainer(ctx context.Context) error {
	start := time.Now()
	_, err := p.client.CreateContainer(ctx, p.container, nil)
	switch {
	case err == nil:
		log.Info().Str("action", "azure_container").Str("container", p.container).
			Dur("elapsed_ms", time.Since(start)).Msg("created container")
		return nil
	case isAlreadyExists(err):
		log.Info().Str("action", "azure_container").Str("container", p.container).
			Msg("using existing container")
		return nil
	default:
		log.Debug().Err(err).Str("action", "azure_container").Str("container", p.container).
			Msg("create container failed")
		return err
	}
}

func isAlreadyExists(err error) bool {
	return bloberror.HasCode(err, bloberror.ContainerAlreadyExists)
}

package gateways

import (
	"context"

	"github.com/zoomio/formulary/internal/domain/entities"
)

// ArchiveFetcher downloads a source archive and reports its digest
type ArchiveFetcher interface {
	FetchArchive(ctx context.Context, url string) (*entities.Archive, error)
}

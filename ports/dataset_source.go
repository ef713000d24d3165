package ports

import (
	"context"

	"gradscope/domain/dataset"
)

// DatasetSource loads the raw graduates table. Implementations read the whole
// table at once; there is no streaming.
type DatasetSource interface {
	Load(ctx context.Context) (*dataset.RawTable, error)
	// Describe names the source for logs and health output.
	Describe() string
}

// TableExporter writes a filtered row-set to an output format.
type TableExporter interface {
	Export(ds *dataset.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

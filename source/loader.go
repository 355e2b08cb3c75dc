package source

import (
	"context"

	"github.com/poiesic/chatsync/core"
)

// File identifies one discoverable transcript source.
type File struct {
	// Key is the loader-specific locator (file path, object key).
	Key string

	// SourceID is the room/channel identifier embedded in the name.
	SourceID string

	// Date is the YYYY-MM-DD date embedded in the name. Sources are
	// discovered and checkpointed by this date.
	Date string
}

// Loader discovers and loads chat transcript sources. Implementations
// must be safe for sequential use by a single sync driver.
type Loader interface {
	// ListSources returns all candidate sources. Order is unspecified;
	// the driver filters by checkpoint cursor and sorts by date.
	ListSources(ctx context.Context) ([]File, error)

	// LoadMessages loads the raw messages of one source, dropping any
	// without text. A load failure is returned to the driver, which
	// isolates it to that source and never aborts the run.
	LoadMessages(ctx context.Context, file File) ([]core.Message, error)
}

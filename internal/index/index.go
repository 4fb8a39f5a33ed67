package index

// PageIndex defines the page index operations used by the HTTP and MCP layers.
// Consumers should depend on this interface rather than the concrete *DB type.
type PageIndex interface {
	UpsertPage(p PageRow, body string) error
	DeletePage(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListPages(prefix string, limit int) ([]PageRow, error)
	NotesOf(page string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)

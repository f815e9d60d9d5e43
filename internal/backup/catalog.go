package backup

// FileRecord tracks where a single filename has been seen: the camera
// uploads source folder, the local staging tree, and the remote bucket.
// Identity is the basename, which is preserved verbatim across moves.
type FileRecord struct {
	Name      string
	InSource  bool
	InStaging bool
	InRemote  bool
}

// Catalog provides an interface for the per-run file location index.
// It is rebuilt from scratch on every invocation; nothing persists between
// runs beyond the filesystem and the bucket themselves.
type Catalog interface {
	// MarkSource records that the named file exists in the source folder.
	MarkSource(name string) error

	// MarkStaging records that the named file exists in the staging tree.
	MarkStaging(name string) error

	// MarkRemote records that the named file exists in the bucket.
	MarkRemote(name string) error

	// Get returns the record for a filename, or nil if never seen.
	Get(name string) (*FileRecord, error)

	// All returns every record, ordered by filename.
	All() ([]*FileRecord, error)

	// Close releases the underlying storage.
	Close() error
}

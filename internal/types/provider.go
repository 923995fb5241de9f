package types

// Provider defines the interface for file system operations
type Provider interface {
	// ListDir returns the contents of a directory
	ListDir(path string) ([]File, error)

	// ReadHead reads at most limit bytes from the start of a file
	ReadHead(path string, limit int) ([]byte, error)

	// Exists checks if a file or directory exists
	Exists(path string) (bool, error)

	// IsDir checks if a path is a directory
	IsDir(path string) (bool, error)

	// GetBasePath returns the base path for this provider
	GetBasePath() string
}

// File types reported by ListDir
const (
	FileTypeFile = "file"
	FileTypeDir  = "dir"
)

// File represents a file or directory entry
type File struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"` // "file" or "dir"
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"`
}

// IsDir reports whether the entry is a directory
func (f File) IsDir() bool {
	return f.Type == FileTypeDir
}

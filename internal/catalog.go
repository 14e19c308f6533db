package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog directions
const (
	CatalogExported = "export"
	CatalogImported = "import"
)

const catalogVersion = "1.0"

// Catalog keeps a YAML record of the archives written and imported
type Catalog struct {
	dir string
}

// CatalogEntry describes one archive file as it was when last seen
type CatalogEntry struct {
	Path       string    `yaml:"path"`
	SessionID  string    `yaml:"session_id"`
	Direction  string    `yaml:"direction"`
	Checksum   string    `yaml:"checksum"`
	Size       int64     `yaml:"size"`
	Messages   int       `yaml:"messages"`
	Files      int       `yaml:"files"`
	RecordedAt time.Time `yaml:"recorded_at"`
}

// CatalogIndex is the on-disk form of the catalog
type CatalogIndex struct {
	Version   string         `yaml:"version"`
	UpdatedAt time.Time      `yaml:"updated_at"`
	Archives  []CatalogEntry `yaml:"archives"`
}

// NewCatalog creates a catalog stored in dir
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// GetIndexPath returns the path to the catalog YAML file
func (c *Catalog) GetIndexPath() string {
	return filepath.Join(c.dir, "catalog.yaml")
}

// LoadIndex loads the catalog. A catalog that was never written is empty.
func (c *Catalog) LoadIndex() (*CatalogIndex, error) {
	data, err := os.ReadFile(c.GetIndexPath())
	if errors.Is(err, os.ErrNotExist) {
		return &CatalogIndex{Version: catalogVersion}, nil
	}
	if err != nil {
		return nil, &StorageError{Path: c.GetIndexPath(), Op: "read", Err: err}
	}

	var index CatalogIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &StorageError{Path: c.GetIndexPath(), Op: "parse", Err: err}
	}
	return &index, nil
}

// SaveIndex writes the catalog, entries sorted by path
func (c *Catalog) SaveIndex(index *CatalogIndex) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return &StorageError{Path: c.dir, Op: "write", Err: err}
	}
	sort.SliceStable(index.Archives, func(i, j int) bool {
		return index.Archives[i].Path < index.Archives[j].Path
	})
	index.Version = catalogVersion
	index.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(c.GetIndexPath(), data, 0644); err != nil {
		return &StorageError{Path: c.GetIndexPath(), Op: "write", Err: err}
	}
	return nil
}

// Record adds or replaces the entry for an archive file. data is the
// archive content and session the session it holds.
func (c *Catalog) Record(path, direction string, data []byte, session *Session) (CatalogEntry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	entry := CatalogEntry{
		Path:       abs,
		SessionID:  session.ID,
		Direction:  direction,
		Checksum:   contentDigest(data),
		Size:       int64(len(data)),
		Messages:   len(session.Messages),
		Files:      session.FileCount(),
		RecordedAt: time.Now().UTC(),
	}

	index, err := c.LoadIndex()
	if err != nil {
		return entry, err
	}
	replaced := false
	for i := range index.Archives {
		if index.Archives[i].Path == abs {
			index.Archives[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		index.Archives = append(index.Archives, entry)
	}
	LogDebug("Catalog: %s %s (%d bytes)", direction, abs, entry.Size)
	return entry, c.SaveIndex(index)
}

// Verify reports whether the archive at path still matches its catalog
// checksum. Unknown paths return false with no error.
func (c *Catalog) Verify(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	index, err := c.LoadIndex()
	if err != nil {
		return false, err
	}
	for _, entry := range index.Archives {
		if entry.Path != abs {
			continue
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return false, &StorageError{Path: abs, Op: "read", Err: err}
		}
		return contentDigest(data) == entry.Checksum, nil
	}
	return false, nil
}

// Prune drops entries whose archive file no longer exists and returns
// how many were removed
func (c *Catalog) Prune() (int, error) {
	index, err := c.LoadIndex()
	if err != nil {
		return 0, err
	}
	kept := index.Archives[:0]
	for _, entry := range index.Archives {
		if _, err := os.Stat(entry.Path); err == nil {
			kept = append(kept, entry)
		}
	}
	removed := len(index.Archives) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	index.Archives = kept
	return removed, c.SaveIndex(index)
}

// Package catalog builds the searchable collection of photographs, grouped
// by the individual each photo portrays.
package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoFolders is returned when Build is given no usable photo folders.
	ErrNoFolders = errors.New("no photo folders to scan")

	// ErrEmptyCatalog is returned when scanning and filtering leave no individuals.
	ErrEmptyCatalog = errors.New("no individuals left after filtering")
)

// Photo is one photograph on disk, attributed to a single individual.
type Photo struct {
	Path       string
	Individual string
}

// Individual is one identified animal and its photos, in discovery order.
type Individual struct {
	ID     string
	Photos []Photo
}

// Filter restricts which photo paths are kept. A path is retained iff it
// contains at least one Include term (or Include is empty) and contains no
// Exclude term. Matching is case-sensitive substring.
type Filter struct {
	Include []string
	Exclude []string
}

func (f Filter) keep(path string) bool {
	for _, term := range f.Exclude {
		if strings.Contains(path, term) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, term := range f.Include {
		if strings.Contains(path, term) {
			return true
		}
	}
	return false
}

// Catalog is the immutable result of scanning photo folders.
type Catalog struct {
	individuals map[string]*Individual
	ids         []string // sorted
}

// Option tweaks catalog construction.
type Option func(*buildOptions)

type buildOptions struct {
	extensions map[string]bool
	logger     *zap.Logger
}

// WithExtensions replaces the recognized image extensions (e.g. ".jpg").
// Comparison is case-insensitive.
func WithExtensions(exts ...string) Option {
	return func(o *buildOptions) {
		o.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			o.extensions[strings.ToLower(e)] = true
		}
	}
}

// WithLogger sets the logger used to report skipped files.
func WithLogger(logger *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = logger }
}

// Build scans the folders recursively and groups every retained photo under
// its individual. Folders that do not exist are skipped; if none exist (or
// the list is empty) Build fails with ErrNoFolders. Photos whose filenames
// violate the naming convention are skipped and logged. If nothing survives
// filtering, Build fails with ErrEmptyCatalog.
func Build(folders []string, filter Filter, opts ...Option) (*Catalog, error) {
	o := buildOptions{
		extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var roots []string
	for _, folder := range folders {
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			o.logger.Warn("skipping unusable photo folder", zap.String("folder", folder))
			continue
		}
		roots = append(roots, folder)
	}
	if len(roots) == 0 {
		return nil, ErrNoFolders
	}

	c := &Catalog{individuals: make(map[string]*Individual)}
	seen := make(map[string]bool)
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !o.extensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if !filter.keep(path) {
				return nil
			}
			// Overlapping roots (a folder and its subfolder) discover the
			// same file twice; keep the first occurrence only.
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			if seen[abs] {
				return nil
			}
			seen[abs] = true
			id, err := ParseID(path)
			if err != nil {
				o.logger.Warn("skipping malformed photo filename", zap.String("path", path))
				return nil
			}
			f, err := os.Open(path)
			if err != nil {
				o.logger.Warn("skipping unreadable photo", zap.String("path", path), zap.Error(err))
				return nil
			}
			f.Close()
			ind, ok := c.individuals[id]
			if !ok {
				ind = &Individual{ID: id}
				c.individuals[id] = ind
			}
			ind.Photos = append(ind.Photos, Photo{Path: path, Individual: id})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(c.individuals) == 0 {
		return nil, ErrEmptyCatalog
	}

	c.ids = make([]string, 0, len(c.individuals))
	for id := range c.individuals {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c, nil
}

// IDs returns the individual identifiers in sorted order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// PhotosOf returns the photos of one individual in discovery order, or nil
// if the individual is not in the catalog.
func (c *Catalog) PhotosOf(id string) []Photo {
	ind, ok := c.individuals[id]
	if !ok {
		return nil
	}
	out := make([]Photo, len(ind.Photos))
	copy(out, ind.Photos)
	return out
}

// Count returns the number of photos held for one individual.
func (c *Catalog) Count(id string) int {
	ind, ok := c.individuals[id]
	if !ok {
		return 0
	}
	return len(ind.Photos)
}

// Len returns the number of individuals in the catalog.
func (c *Catalog) Len() int {
	return len(c.individuals)
}

// Has reports whether the individual is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.individuals[id]
	return ok
}

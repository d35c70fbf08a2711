package media

import (
	"context"

	"github.com/Kyz7/dashboard/internal/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Query struct {
	Path   string
	Type   models.MediaType
	Search string
	Page   int
	Limit  int
}

func (q *Query) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
}

// Listing is one page of a folder view.
type Listing struct {
	Files       []models.MediaRecord
	Folders     []FolderItem
	Breadcrumbs []Crumb
	Page        int
	Limit       int
	Total       int64
}

// Resolver maps a logical path to the records tagged with exactly that path
// and the catalogue folders directly below it.
type Resolver struct {
	records   RecordStore
	catalogue *Catalogue
	siteID    string
}

func NewResolver(records RecordStore, catalogue *Catalogue, siteID string) *Resolver {
	return &Resolver{records: records, catalogue: catalogue, siteID: siteID}
}

func (r *Resolver) Catalogue() *Catalogue { return r.catalogue }

// List never fails for an unknown path; it yields empty files and folders.
// Files stored under a subfolder are not listed at its parent.
func (r *Resolver) List(ctx context.Context, q Query) (*Listing, error) {
	q.normalize()

	files, total, err := r.records.List(ctx, Filter{
		SiteID: r.siteID,
		Path:   q.Path,
		Type:   q.Type,
		Search: q.Search,
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, &StoreError{Op: "list media", Err: err}
	}

	return &Listing{
		Files:       files,
		Folders:     r.Folders(q.Path, q.Type),
		Breadcrumbs: Breadcrumbs(q.Path, r.catalogue),
		Page:        q.Page,
		Limit:       q.Limit,
		Total:       total,
	}, nil
}

// Folders lists catalogue children of p. The unfiltered view shows the
// children of root.
func (r *Resolver) Folders(p string, t models.MediaType) []FolderItem {
	if p == "" {
		p = "/"
	}
	return r.catalogue.Children(p, t)
}

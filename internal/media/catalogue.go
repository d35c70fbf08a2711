package media

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/Kyz7/dashboard/internal/models"
)

// FolderItem is a virtual folder. Folders are a fixed taxonomy, not rows.
type FolderItem struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	ParentPath string `json:"parentPath"`
}

// Catalogue is the per-type folder taxonomy offered to the UI.
type Catalogue struct {
	byType map[models.MediaType][]FolderItem
}

var typeOrder = []models.MediaType{models.MediaImage, models.MediaAudio, models.MediaVideo, models.MediaDocument}

func NewCatalogue(entries map[models.MediaType][]FolderItem) (*Catalogue, error) {
	c := &Catalogue{byType: make(map[models.MediaType][]FolderItem, len(entries))}
	for t, items := range entries {
		if !t.Valid() {
			return nil, fmt.Errorf("catalogue: unknown media type %q", t)
		}
		for _, item := range items {
			if !strings.HasPrefix(item.Path, "/") || item.Path == "/" {
				return nil, fmt.Errorf("catalogue: %s folder path %q must be absolute and not root", t, item.Path)
			}
			item.Path = path.Clean(item.Path)
			if item.ParentPath == "" {
				item.ParentPath = path.Dir(item.Path)
			}
			if item.Name == "" {
				item.Name = path.Base(item.Path)
			}
			c.byType[t] = append(c.byType[t], item)
		}
	}
	return c, nil
}

func DefaultCatalogue() *Catalogue {
	c, _ := NewCatalogue(map[models.MediaType][]FolderItem{
		models.MediaImage: {
			{Name: "Images", Path: "/images"},
			{Name: "General", Path: "/images/general"},
			{Name: "About", Path: "/images/about"},
			{Name: "Podcast", Path: "/images/podcast"},
			{Name: "Blog", Path: "/images/blog"},
		},
		models.MediaAudio: {
			{Name: "Audio", Path: "/audio"},
			{Name: "General", Path: "/audio/general"},
			{Name: "Podcast", Path: "/audio/podcast"},
		},
		models.MediaVideo: {
			{Name: "Videos", Path: "/videos"},
			{Name: "General", Path: "/videos/general"},
		},
		models.MediaDocument: {
			{Name: "Documents", Path: "/documents"},
			{Name: "General", Path: "/documents/general"},
		},
	})
	return c
}

// LoadCatalogue reads {"IMAGE": [{"name": "...", "path": "..."}], ...}.
func LoadCatalogue(r io.Reader) (*Catalogue, error) {
	var raw map[models.MediaType][]FolderItem
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("catalogue: %w", err)
	}
	return NewCatalogue(raw)
}

func LoadCatalogueFile(name string) (*Catalogue, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalogue(f)
}

// Children returns the folders whose immediate parent is parent. With no type
// filter every type contributes, de-duplicated by path.
func (c *Catalogue) Children(parent string, t models.MediaType) []FolderItem {
	types := typeOrder
	if t != "" {
		types = []models.MediaType{t}
	}

	out := []FolderItem{}
	seen := map[string]bool{}
	for _, typ := range types {
		for _, item := range c.byType[typ] {
			if item.ParentPath != parent || seen[item.Path] {
				continue
			}
			seen[item.Path] = true
			out = append(out, item)
		}
	}
	return out
}

func (c *Catalogue) Lookup(p string) (FolderItem, bool) {
	for _, typ := range typeOrder {
		for _, item := range c.byType[typ] {
			if item.Path == p {
				return item, true
			}
		}
	}
	return FolderItem{}, false
}

package media

import (
	"fmt"
	"path"
	"strings"

	"github.com/Kyz7/dashboard/internal/models"
)

type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Breadcrumbs splits p into crumbs starting at root. Catalogue names are used
// where the segment is a known folder.
func Breadcrumbs(p string, catalogue *Catalogue) []Crumb {
	crumbs := []Crumb{{Name: "All Files", Path: "/"}}
	if p == "" || p == "/" {
		return crumbs
	}

	current := ""
	for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
		if seg == "" {
			continue
		}
		current += "/" + seg
		name := seg
		if catalogue != nil {
			if item, ok := catalogue.Lookup(current); ok {
				name = item.Name
			}
		}
		crumbs = append(crumbs, Crumb{Name: name, Path: current})
	}
	return crumbs
}

func parentOf(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return path.Dir(strings.TrimRight(p, "/"))
}

// Browser holds the state of the library view: where the user is, the type
// filter and the current selection. Selection order is insertion order.
type Browser struct {
	Path     string
	Type     models.MediaType
	selected []string
	index    map[string]bool
}

func NewBrowser(start string, t models.MediaType) *Browser {
	if start == "" {
		start = "/"
	}
	return &Browser{Path: start, Type: t, index: map[string]bool{}}
}

// Navigate moves to p and clears the selection.
func (b *Browser) Navigate(p string) {
	if p == "" {
		p = "/"
	}
	b.Path = p
	b.Clear()
}

func (b *Browser) Up() {
	b.Navigate(parentOf(b.Path))
}

func (b *Browser) Toggle(id string) {
	if b.index[id] {
		delete(b.index, id)
		for i, s := range b.selected {
			if s == id {
				b.selected = append(b.selected[:i], b.selected[i+1:]...)
				break
			}
		}
		return
	}
	b.add(id)
}

func (b *Browser) SelectAll(ids []string) {
	for _, id := range ids {
		b.add(id)
	}
}

func (b *Browser) add(id string) {
	if id = strings.TrimSpace(id); id == "" || b.index[id] {
		return
	}
	b.index[id] = true
	b.selected = append(b.selected, id)
}

func (b *Browser) Clear() {
	b.selected = nil
	b.index = map[string]bool{}
}

func (b *Browser) IsSelected(id string) bool { return b.index[id] }

func (b *Browser) Selection() []string {
	return append([]string(nil), b.selected...)
}

func (b *Browser) Query(page, limit int) Query {
	return Query{Path: b.Path, Type: b.Type, Page: page, Limit: limit}
}

func (b *Browser) Breadcrumbs(catalogue *Catalogue) []Crumb {
	return Breadcrumbs(b.Path, catalogue)
}

type PickerState int

const (
	PickerBrowsing PickerState = iota
	PickerClosed
)

// Picker is a read-only browser scoped to one media type. It ends either with
// a selected file or with nothing.
type Picker struct {
	Type     models.MediaType
	state    PickerState
	path     string
	selected *models.MediaRecord
}

func NewPicker(t models.MediaType, start string) *Picker {
	if start == "" {
		start = "/"
	}
	return &Picker{Type: t, state: PickerBrowsing, path: start}
}

func (p *Picker) State() PickerState { return p.state }

func (p *Picker) Path() string { return p.path }

func (p *Picker) Navigate(to string) error {
	if p.state == PickerClosed {
		return ErrPickerClosed
	}
	if to == "" {
		to = "/"
	}
	p.path = to
	return nil
}

func (p *Picker) Up() error {
	return p.Navigate(parentOf(p.path))
}

// Select closes the picker with rec. rec must be of the picker's type.
func (p *Picker) Select(rec *models.MediaRecord) error {
	if p.state == PickerClosed {
		return ErrPickerClosed
	}
	if rec == nil {
		return ErrNotFound
	}
	if rec.Type != p.Type {
		return Invalid(CodeTypeMismatch, fmt.Sprintf("Expected a %s file, got %s", strings.ToLower(string(p.Type)), strings.ToLower(string(rec.Type))))
	}
	p.selected = rec
	p.state = PickerClosed
	return nil
}

func (p *Picker) Close() {
	p.state = PickerClosed
}

// Selected returns the chosen record once the picker is closed, nil when it
// was closed without a choice.
func (p *Picker) Selected() *models.MediaRecord {
	if p.state != PickerClosed {
		return nil
	}
	return p.selected
}

func (p *Picker) Query(search string, page, limit int) Query {
	return Query{Path: p.path, Type: p.Type, Search: search, Page: page, Limit: limit}
}

package page

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bramblewiki/bramble/pkg/acl"
)

// ErrNoSuchPage is returned when a lookup names a page that does not exist.
var ErrNoSuchPage = errors.New("no such page")

// Page is a wiki page with its parsed access-control list. The ACL is
// derived from ALLOW directives in the text at save time and kept alongside
// the content so permission checks never re-parse markup.
type Page struct {
	Name     string
	Text     string
	Author   string
	Modified time.Time

	acl *Acl
}

// Acl is re-exported so callers of this package do not need to import the
// acl package for the common read path.
type Acl = acl.Acl

// ACL returns the page's parsed ACL, possibly empty, never nil for an
// existing page.
func (p *Page) ACL() *Acl {
	return p.acl
}

// Attachment is a file attached to a page. Attachments carry no ACL of
// their own; protection always comes from the owning page.
type Attachment struct {
	Page     string
	Name     string
	Size     int64
	Author   string
	Modified time.Time
}

// Key returns the attachment's resource key, "PageName/file.ext".
func (a *Attachment) Key() string {
	return a.Page + "/" + a.Name
}

// Repository holds pages and attachments in memory and serves ACLs to the
// authorization layer. It implements acl.Provider: a page resolves to its
// own ACL and an attachment's parent is its owning page.
type Repository struct {
	mu          sync.RWMutex
	pages       map[string]*Page
	attachments map[string]*Attachment
	resolve     acl.Resolver
}

// NewRepository creates an empty repository. Principal names in ACL
// directives are resolved through resolve at save time.
func NewRepository(resolve acl.Resolver) *Repository {
	return &Repository{
		pages:       make(map[string]*Page),
		attachments: make(map[string]*Attachment),
		resolve:     resolve,
	}
}

// Save parses ACL directives out of text and stores the page. A page whose
// markup contains DENY directives is rejected whole; the previous revision,
// if any, stays in place.
func (r *Repository) Save(name, text, author string) (*Page, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("page name must not be empty")
	}
	parsed, err := acl.Parse(text, r.resolve)
	if err != nil {
		return nil, fmt.Errorf("saving page %q: %w", name, err)
	}
	p := &Page{
		Name:     name,
		Text:     text,
		Author:   author,
		Modified: time.Now().UTC(),
		acl:      parsed,
	}
	r.mu.Lock()
	r.pages[name] = p
	r.mu.Unlock()
	return p, nil
}

// Get returns the named page.
func (r *Repository) Get(name string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("page %q: %w", name, ErrNoSuchPage)
	}
	return p, nil
}

// Delete removes a page and all of its attachments.
func (r *Repository) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[name]; !ok {
		return fmt.Errorf("page %q: %w", name, ErrNoSuchPage)
	}
	delete(r.pages, name)
	prefix := name + "/"
	for key := range r.attachments {
		if strings.HasPrefix(key, prefix) {
			delete(r.attachments, key)
		}
	}
	return nil
}

// All returns every page name, sorted.
func (r *Repository) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attach records an attachment on an existing page.
func (r *Repository) Attach(page, name, author string, size int64) (*Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[page]; !ok {
		return nil, fmt.Errorf("attaching %q: page %q: %w", name, page, ErrNoSuchPage)
	}
	a := &Attachment{
		Page:     page,
		Name:     name,
		Size:     size,
		Author:   author,
		Modified: time.Now().UTC(),
	}
	r.attachments[a.Key()] = a
	return a, nil
}

// Attachments returns the attachments of a page, sorted by name.
func (r *Repository) Attachments(page string) []*Attachment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Attachment
	prefix := page + "/"
	for key, a := range r.attachments {
		if strings.HasPrefix(key, prefix) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AclFor implements acl.Provider. A page key returns the page's own ACL; an
// attachment key returns nil because attachments never carry their own ACL
// and inherit through ParentOf instead. Unknown keys return nil, which the
// ACL layer treats as "no ACL".
func (r *Repository) AclFor(resource string) *acl.Acl {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.pages[resource]; ok {
		return p.acl
	}
	return nil
}

// ParentOf implements acl.Provider. Only attachments have parents: the
// owning page named before the slash in the attachment key.
func (r *Repository) ParentOf(resource string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.attachments[resource]; ok {
		return a.Page, true
	}
	return "", false
}

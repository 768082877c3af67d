// Package jsonfile implements the catalog store over a single JSON document.
//
// The on-disk layout mirrors the legacy data file:
//
//	{
//	  "users":     {email: {"username": ..., "password": <hmac hash>}},
//	  "user_data": {email: {"categories": [...],
//	                        "subcategories": {category: [product...]},
//	                        "products": [product...]}}
//	}
//
// The whole document is read-modify-written on every mutation. A sync.RWMutex
// serializes writers so concurrent owner edits cannot lose updates; the file
// itself is replaced atomically via a temp-file rename.
package jsonfile

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

type userRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userData struct {
	Categories    []string                     `json:"categories"`
	Subcategories map[string][]catalog.Product `json:"subcategories"`
	Products      []catalog.Product            `json:"products"`
}

type document struct {
	Users    map[string]userRecord `json:"users"`
	UserData map[string]userData   `json:"user_data"`
}

func emptyDocument() document {
	return document{
		Users:    map[string]userRecord{},
		UserData: map[string]userData{},
	}
}

// defaultCategories seed every fresh owner catalog.
var defaultCategories = []string{"mens", "women", "baby"}

var _ catalog.Store = (*Store)(nil)

// Store is a file-backed catalog.Store.
type Store struct {
	path   string
	pepper []byte

	mu  sync.RWMutex
	doc document
}

// Open loads the catalog document at path, creating an empty one when the
// file does not exist. The pepper keys the HMAC used for owner passwords.
func Open(path string, pepper []byte) (*Store, error) {
	s := &Store{path: path, pepper: pepper, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, errors.Wrap(err, "read catalog file")
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, errors.Wrap(err, "parse catalog file")
	}
	if s.doc.Users == nil {
		s.doc.Users = map[string]userRecord{}
	}
	if s.doc.UserData == nil {
		s.doc.UserData = map[string]userData{}
	}
	return s, nil
}

// save writes the document back to disk. Callers must hold the write lock.
func (s *Store) save() error {
	data, err := json.Marshal(s.doc)
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create catalog dir")
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write catalog temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace catalog file")
	}
	return nil
}

func (s *Store) hash(password string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// --- Owner accounts ---

func (s *Store) RegisterOwner(_ context.Context, email, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Users[email]; ok {
		return catalog.ErrOwnerExists
	}
	s.doc.Users[email] = userRecord{Username: username, Password: s.hash(password)}

	ud := userData{
		Categories:    append([]string(nil), defaultCategories...),
		Subcategories: map[string][]catalog.Product{},
		Products:      []catalog.Product{},
	}
	for _, c := range defaultCategories {
		ud.Subcategories[c] = []catalog.Product{}
	}
	s.doc.UserData[email] = ud

	return s.save()
}

func (s *Store) AuthenticateOwner(_ context.Context, email, password string) (*catalog.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.doc.Users[email]
	if !ok {
		return nil, catalog.ErrBadCredentials
	}
	if subtle.ConstantTimeCompare([]byte(rec.Password), []byte(s.hash(password))) != 1 {
		return nil, catalog.ErrBadCredentials
	}
	return &catalog.Owner{Email: email, Username: rec.Username}, nil
}

func (s *Store) Owners(_ context.Context) ([]catalog.OwnerCatalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.OwnerCatalog, 0, len(s.doc.Users))
	for email, rec := range s.doc.Users {
		out = append(out, catalog.OwnerCatalog{
			Owner:      catalog.Owner{Email: email, Username: rec.Username},
			Categories: append([]string(nil), s.doc.UserData[email].Categories...),
			Products:   s.ownerProducts(email),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner.Email < out[j].Owner.Email })
	return out, nil
}

func (s *Store) OwnerByEmail(_ context.Context, email string) (*catalog.OwnerCatalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.doc.Users[email]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &catalog.OwnerCatalog{
		Owner:      catalog.Owner{Email: email, Username: rec.Username},
		Categories: append([]string(nil), s.doc.UserData[email].Categories...),
		Products:   s.ownerProducts(email),
	}, nil
}

func (s *Store) DeleteOwner(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Users[email]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.doc.Users, email)
	delete(s.doc.UserData, email)
	return s.save()
}

// ownerProducts merges subcategory-held entries and direct products for one
// owner. Callers must hold at least the read lock.
func (s *Store) ownerProducts(email string) []catalog.Product {
	ud := s.doc.UserData[email]
	var out []catalog.Product
	for cat, items := range ud.Subcategories {
		for _, p := range items {
			if p.Category == "" {
				p.Category = cat
			}
			out = append(out, p)
		}
	}
	out = append(out, ud.Products...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- Storefront reads ---

func (s *Store) AllProducts(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allProducts(), nil
}

func (s *Store) allProducts() []catalog.Product {
	emails := make([]string, 0, len(s.doc.UserData))
	for email := range s.doc.UserData {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	var out []catalog.Product
	for _, email := range emails {
		out = append(out, s.ownerProducts(email)...)
	}
	return out
}

func (s *Store) ProductByName(_ context.Context, name string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.allProducts() {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *Store) ProductsByCategory(_ context.Context, category string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []catalog.Product
	for _, p := range s.allProducts() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ProductsBySubcategory(_ context.Context, subcategory string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []catalog.Product
	for _, p := range s.allProducts() {
		if p.Subcategory == subcategory {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) Categories(_ context.Context) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := map[string]map[string]struct{}{}
	for _, ud := range s.doc.UserData {
		for _, cat := range ud.Categories {
			if _, ok := subs[cat]; !ok {
				subs[cat] = map[string]struct{}{}
			}
		}
		for cat, items := range ud.Subcategories {
			if _, ok := subs[cat]; !ok {
				subs[cat] = map[string]struct{}{}
			}
			for _, p := range items {
				if p.Subcategory != "" {
					subs[cat][p.Subcategory] = struct{}{}
				}
			}
		}
	}

	out := make(map[string][]string, len(subs))
	for cat, set := range subs {
		names := make([]string, 0, len(set))
		for sub := range set {
			names = append(names, sub)
		}
		sort.Strings(names)
		out[cat] = names
	}
	return out, nil
}

// --- Owner-scoped management ---

func (s *Store) AddCategory(_ context.Context, owner, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud, ok := s.doc.UserData[owner]
	if !ok {
		return catalog.ErrNotFound
	}
	for _, c := range ud.Categories {
		if c == name {
			return catalog.ErrDuplicate
		}
	}
	ud.Categories = append(ud.Categories, name)
	if ud.Subcategories == nil {
		ud.Subcategories = map[string][]catalog.Product{}
	}
	ud.Subcategories[name] = []catalog.Product{}
	s.doc.UserData[owner] = ud
	return s.save()
}

func (s *Store) RenameCategory(_ context.Context, owner, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud, ok := s.doc.UserData[owner]
	if !ok {
		return catalog.ErrNotFound
	}
	idx := -1
	for i, c := range ud.Categories {
		if c == oldName {
			idx = i
		}
		if c == newName {
			return catalog.ErrDuplicate
		}
	}
	if idx < 0 {
		return catalog.ErrNotFound
	}
	ud.Categories[idx] = newName

	items := ud.Subcategories[oldName]
	delete(ud.Subcategories, oldName)
	for i := range items {
		items[i].Category = newName
	}
	ud.Subcategories[newName] = items
	s.doc.UserData[owner] = ud
	return s.save()
}

func (s *Store) DeleteCategory(_ context.Context, owner, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud, ok := s.doc.UserData[owner]
	if !ok {
		return catalog.ErrNotFound
	}
	kept := ud.Categories[:0]
	found := false
	for _, c := range ud.Categories {
		if c == name {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return catalog.ErrNotFound
	}
	ud.Categories = kept
	delete(ud.Subcategories, name)
	s.doc.UserData[owner] = ud
	return s.save()
}

func (s *Store) AddProduct(_ context.Context, owner string, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud, ok := s.doc.UserData[owner]
	if !ok {
		return catalog.ErrNotFound
	}
	for _, existing := range s.ownerProducts(owner) {
		if existing.Name == p.Name {
			return catalog.ErrDuplicate
		}
	}
	if ud.Subcategories == nil {
		ud.Subcategories = map[string][]catalog.Product{}
	}
	ud.Subcategories[p.Category] = append(ud.Subcategories[p.Category], p)
	s.doc.UserData[owner] = ud
	return s.save()
}

func (s *Store) UpdateProduct(_ context.Context, owner, oldName string, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud, ok := s.doc.UserData[owner]
	if !ok {
		return catalog.ErrNotFound
	}
	if p.Name != oldName {
		for _, existing := range s.ownerProducts(owner) {
			if existing.Name == p.Name {
				return catalog.ErrDuplicate
			}
		}
	}

	if !s.removeProduct(&ud, oldName) {
		return catalog.ErrNotFound
	}
	ud.Subcategories[p.Category] = append(ud.Subcategories[p.Category], p)
	s.doc.UserData[owner] = ud
	return s.save()
}

func (s *Store) DeleteProduct(_ context.Context, owner, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud, ok := s.doc.UserData[owner]
	if !ok {
		return catalog.ErrNotFound
	}
	if !s.removeProduct(&ud, name) {
		return catalog.ErrNotFound
	}
	s.doc.UserData[owner] = ud
	return s.save()
}

// removeProduct drops the named product from both the subcategory lists and
// the direct products array. Returns false when no entry matched.
func (s *Store) removeProduct(ud *userData, name string) bool {
	found := false
	for cat, items := range ud.Subcategories {
		kept := items[:0]
		for _, p := range items {
			if p.Name == name {
				found = true
				continue
			}
			kept = append(kept, p)
		}
		ud.Subcategories[cat] = kept
	}
	kept := ud.Products[:0]
	for _, p := range ud.Products {
		if p.Name == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	ud.Products = kept
	return found
}

func (s *Store) SetRating(_ context.Context, owner, name string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud, ok := s.doc.UserData[owner]
	if !ok {
		return catalog.ErrNotFound
	}
	for cat, items := range ud.Subcategories {
		for i := range items {
			if items[i].Name == name {
				items[i].Rating = rating
				ud.Subcategories[cat] = items
				s.doc.UserData[owner] = ud
				return s.save()
			}
		}
	}
	for i := range ud.Products {
		if ud.Products[i].Name == name {
			ud.Products[i].Rating = rating
			s.doc.UserData[owner] = ud
			return s.save()
		}
	}
	return catalog.ErrNotFound
}

func (s *Store) SearchProducts(_ context.Context, owner, query string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.doc.UserData[owner]; !ok {
		return nil, catalog.ErrNotFound
	}

	q := strings.ToLower(query)
	var out []catalog.Product
	for _, p := range s.ownerProducts(owner) {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Subcategory), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

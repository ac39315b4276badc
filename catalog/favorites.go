package catalog

import (
	"context"
	"log"
	"slices"
	"sync"
)

// FavoritesStore persists the favorites set of one owner as a whole.
type FavoritesStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// Favorites is a set of course identifiers kept in insertion order.
type Favorites struct {
	mu    sync.Mutex
	ids   []string
	store FavoritesStore
}

// LoadFavorites reads the persisted set once. A store that cannot be read
// yields an empty set.
func LoadFavorites(ctx context.Context, store FavoritesStore) *Favorites {
	f := &Favorites{store: store}
	if store == nil {
		return f
	}
	ids, err := store.Load(ctx)
	if err != nil {
		log.Printf("Warning: failed to load favorites, starting empty: %v", err)
		return f
	}
	for _, id := range ids {
		if id != "" && !slices.Contains(f.ids, id) {
			f.ids = append(f.ids, id)
		}
	}
	return f
}

// Toggle flips membership of id, persists the whole set and reports whether
// id is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	favorited := true
	if i := slices.Index(f.ids, id); i >= 0 {
		f.ids = slices.Delete(f.ids, i, i+1)
		favorited = false
	} else {
		f.ids = append(f.ids, id)
	}

	if f.store != nil {
		if err := f.store.Save(ctx, slices.Clone(f.ids)); err != nil {
			log.Printf("Warning: failed to persist favorites: %v", err)
		}
	}
	return favorited
}

// Has reports whether id is a favorite.
func (f *Favorites) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.ids, id)
}

// IDs returns a copy of the set.
func (f *Favorites) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ids)
}

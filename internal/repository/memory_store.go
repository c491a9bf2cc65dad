package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/javajoker/catalog-api/internal/models"
)

// MemoryStore is a process-local Store for DB_DRIVER=memory and tests.
// Transactions are serialized by a single mutex and roll back by restoring
// a snapshot. Foreign keys are checked for categories, products and
// ratings; user references are not.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

type memState struct {
	categories map[uint]models.Category
	products   map[uint]models.Product
	ratings    map[uint]models.Rating
	reviews    map[uint]models.Review
	users      map[uint]models.User
	auditLogs  []models.AuditLog
	lastID     uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		state: &memState{
			categories: make(map[uint]models.Category),
			products:   make(map[uint]models.Product),
			ratings:    make(map[uint]models.Rating),
			reviews:    make(map[uint]models.Review),
			users:      make(map[uint]models.User),
		},
	}
}

func (s *memState) clone() memState {
	c := memState{
		categories: make(map[uint]models.Category, len(s.categories)),
		products:   make(map[uint]models.Product, len(s.products)),
		ratings:    make(map[uint]models.Rating, len(s.ratings)),
		reviews:    make(map[uint]models.Review, len(s.reviews)),
		users:      make(map[uint]models.User, len(s.users)),
		auditLogs:  append([]models.AuditLog(nil), s.auditLogs...),
		lastID:     s.lastID,
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.ratings {
		c.ratings[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *memState) nextID() uint {
	s.lastID++
	return s.lastID
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &MemoryStore{mu: s.mu, state: s.state, inTx: true}

	committed := false
	defer func() {
		if !committed {
			*s.state = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *MemoryStore) run(fn func(st *memState) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.state)
}

// --- CategoryStore Implementation ---

func (s *MemoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.run(func(st *memState) error {
		if category.ParentID != nil {
			if _, ok := st.categories[*category.ParentID]; !ok {
				return fmt.Errorf("%w: parent category %d", ErrForeignKeyViolation, *category.ParentID)
			}
		}
		for _, c := range st.categories {
			if c.Slug == category.Slug {
				return fmt.Errorf("%w: category slug %q", ErrDuplicate, category.Slug)
			}
		}
		now := time.Now()
		category.ID = st.nextID()
		category.CreatedAt, category.UpdatedAt = now, now
		st.categories[category.ID] = *category
		return nil
	})
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	return s.run(func(st *memState) error {
		existing, ok := st.categories[category.ID]
		if !ok {
			return ErrNotFound
		}
		if category.ParentID != nil {
			if _, ok := st.categories[*category.ParentID]; !ok {
				return fmt.Errorf("%w: parent category %d", ErrForeignKeyViolation, *category.ParentID)
			}
		}
		for id, c := range st.categories {
			if id != category.ID && c.Slug == category.Slug {
				return fmt.Errorf("%w: category slug %q", ErrDuplicate, category.Slug)
			}
		}
		existing.Name = category.Name
		existing.Slug = category.Slug
		existing.ParentID = category.ParentID
		existing.IsActive = category.IsActive
		existing.UpdatedAt = time.Now()
		st.categories[category.ID] = existing
		return nil
	})
}

func (s *MemoryStore) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var out *models.Category
	err := s.run(func(st *memState) error {
		c, ok := st.categories[id]
		if !ok {
			return ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var out *models.Category
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.categories) {
			if c := st.categories[id]; c.Slug == slug {
				out = &c
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (s *MemoryStore) ListSubcategoryIDs(ctx context.Context, parentID uint) ([]uint, error) {
	var ids []uint
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.categories) {
			if c := st.categories[id]; c.IsActive && c.ParentID != nil && *c.ParentID == parentID {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

func (s *MemoryStore) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.categories) {
			if c := st.categories[id]; c.IsActive {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

func (s *MemoryStore) DeactivateCategory(ctx context.Context, id uint) error {
	return s.run(func(st *memState) error {
		c, ok := st.categories[id]
		if !ok {
			return ErrNotFound
		}
		c.IsActive = false
		c.UpdatedAt = time.Now()
		st.categories[id] = c
		return nil
	})
}

// --- ProductStore Implementation ---

func (s *MemoryStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.run(func(st *memState) error {
		if _, ok := st.categories[product.CategoryID]; !ok {
			return fmt.Errorf("%w: category %d", ErrForeignKeyViolation, product.CategoryID)
		}
		now := time.Now()
		product.ID = st.nextID()
		product.CreatedAt, product.UpdatedAt = now, now
		st.products[product.ID] = *product
		return nil
	})
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	return s.run(func(st *memState) error {
		existing, ok := st.products[product.ID]
		if !ok {
			return ErrNotFound
		}
		if _, ok := st.categories[product.CategoryID]; !ok {
			return fmt.Errorf("%w: category %d", ErrForeignKeyViolation, product.CategoryID)
		}
		existing.Name = product.Name
		existing.Slug = product.Slug
		existing.Description = product.Description
		existing.Price = product.Price
		existing.ImageURL = product.ImageURL
		existing.Stock = product.Stock
		existing.CategoryID = product.CategoryID
		existing.IsActive = product.IsActive
		existing.UpdatedAt = time.Now()
		st.products[product.ID] = existing
		return nil
	})
}

func (s *MemoryStore) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var out *models.Product
	err := s.run(func(st *memState) error {
		p, ok := st.products[id]
		if !ok {
			return ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.findProduct(func(p models.Product) bool { return p.Slug == slug })
}

func (s *MemoryStore) GetAvailableProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.findProduct(func(p models.Product) bool { return p.Slug == slug && p.Available() })
}

func (s *MemoryStore) findProduct(match func(models.Product) bool) (*models.Product, error) {
	var out *models.Product
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.products) {
			if p := st.products[id]; match(p) {
				out = &p
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (s *MemoryStore) ListAvailableProducts(ctx context.Context, categoryIDs []uint) ([]models.Product, error) {
	var wanted map[uint]bool
	if categoryIDs != nil {
		wanted = make(map[uint]bool, len(categoryIDs))
		for _, id := range categoryIDs {
			wanted[id] = true
		}
	}

	var out []models.Product
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.products) {
			p := st.products[id]
			if !p.Available() {
				continue
			}
			if wanted != nil && !wanted[p.CategoryID] {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

func (s *MemoryStore) DeactivateProduct(ctx context.Context, id uint) error {
	return s.run(func(st *memState) error {
		p, ok := st.products[id]
		if !ok {
			return ErrNotFound
		}
		p.IsActive = false
		p.UpdatedAt = time.Now()
		st.products[id] = p
		return nil
	})
}

// LockProduct only checks existence; the store mutex already serializes
// transactions.
func (s *MemoryStore) LockProduct(ctx context.Context, id uint) (bool, error) {
	var found bool
	err := s.run(func(st *memState) error {
		_, found = st.products[id]
		return nil
	})
	return found, err
}

func (s *MemoryStore) RecomputeProductRating(ctx context.Context, productID uint) (float64, error) {
	var rating float64
	err := s.run(func(st *memState) error {
		p, ok := st.products[productID]
		if !ok {
			return ErrNotFound
		}
		var sum, count int
		for _, r := range st.ratings {
			if r.ProductID == productID && r.IsActive {
				sum += r.Grade
				count++
			}
		}
		if count > 0 {
			rating = float64(sum) / float64(count)
		}
		p.Rating = rating
		p.UpdatedAt = time.Now()
		st.products[productID] = p
		return nil
	})
	return rating, err
}

// --- RatingStore Implementation ---

func (s *MemoryStore) CreateRating(ctx context.Context, rating *models.Rating) error {
	return s.run(func(st *memState) error {
		if _, ok := st.products[rating.ProductID]; !ok {
			return fmt.Errorf("%w: product %d", ErrForeignKeyViolation, rating.ProductID)
		}
		rating.ID = st.nextID()
		st.ratings[rating.ID] = *rating
		return nil
	})
}

func (s *MemoryStore) GetRatingByID(ctx context.Context, id uint) (*models.Rating, error) {
	var out *models.Rating
	err := s.run(func(st *memState) error {
		r, ok := st.ratings[id]
		if !ok {
			return ErrNotFound
		}
		out = &r
		return nil
	})
	return out, err
}

func (s *MemoryStore) DeactivateRating(ctx context.Context, id uint) error {
	return s.run(func(st *memState) error {
		r, ok := st.ratings[id]
		if !ok {
			return ErrNotFound
		}
		r.IsActive = false
		st.ratings[id] = r
		return nil
	})
}

func (s *MemoryStore) ListRatings(ctx context.Context) ([]models.Rating, error) {
	return s.filterRatings(func(models.Rating) bool { return true })
}

func (s *MemoryStore) ListRatingsByProduct(ctx context.Context, productID uint) ([]models.Rating, error) {
	return s.filterRatings(func(r models.Rating) bool { return r.ProductID == productID })
}

func (s *MemoryStore) filterRatings(match func(models.Rating) bool) ([]models.Rating, error) {
	var out []models.Rating
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.ratings) {
			if r := st.ratings[id]; match(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// --- ReviewStore Implementation ---

func (s *MemoryStore) CreateReview(ctx context.Context, review *models.Review) error {
	return s.run(func(st *memState) error {
		if _, ok := st.products[review.ProductID]; !ok {
			return fmt.Errorf("%w: product %d", ErrForeignKeyViolation, review.ProductID)
		}
		if _, ok := st.ratings[review.RatingID]; !ok {
			return fmt.Errorf("%w: rating %d", ErrForeignKeyViolation, review.RatingID)
		}
		for _, r := range st.reviews {
			if r.RatingID == review.RatingID {
				return fmt.Errorf("%w: review for rating %d", ErrDuplicate, review.RatingID)
			}
		}
		review.ID = st.nextID()
		if review.CommentDate.IsZero() {
			review.CommentDate = time.Now()
		}
		st.reviews[review.ID] = *review
		return nil
	})
}

func (s *MemoryStore) GetReviewByRatingID(ctx context.Context, ratingID uint) (*models.Review, error) {
	var out *models.Review
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.reviews) {
			if r := st.reviews[id]; r.RatingID == ratingID {
				out = &r
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (s *MemoryStore) DeactivateReview(ctx context.Context, id uint) error {
	return s.run(func(st *memState) error {
		r, ok := st.reviews[id]
		if !ok {
			return ErrNotFound
		}
		r.IsActive = false
		st.reviews[id] = r
		return nil
	})
}

func (s *MemoryStore) ListReviews(ctx context.Context) ([]models.Review, error) {
	return s.filterReviews(func(models.Review) bool { return true })
}

func (s *MemoryStore) ListReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	return s.filterReviews(func(r models.Review) bool { return r.ProductID == productID })
}

func (s *MemoryStore) filterReviews(match func(models.Review) bool) ([]models.Review, error) {
	var out []models.Review
	err := s.run(func(st *memState) error {
		for _, id := range sortedKeys(st.reviews) {
			if r := st.reviews[id]; match(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// --- UserStore Implementation ---

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.run(func(st *memState) error {
		for _, u := range st.users {
			if u.Username == user.Username || u.Email == user.Email {
				return fmt.Errorf("%w: user %q", ErrDuplicate, user.Username)
			}
		}
		now := time.Now()
		user.ID = st.nextID()
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.ID] = *user
		return nil
	})
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	return s.run(func(st *memState) error {
		existing, ok := st.users[user.ID]
		if !ok {
			return ErrNotFound
		}
		existing.Email = user.Email
		existing.PasswordHash = user.PasswordHash
		existing.IsActive = user.IsActive
		existing.IsAdmin = user.IsAdmin
		existing.IsSupplier = user.IsSupplier
		existing.IsCustomer = user.IsCustomer
		existing.UpdatedAt = time.Now()
		st.users[user.ID] = existing
		return nil
	})
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var out *models.User
	err := s.run(func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var out *models.User
	err := s.run(func(st *memState) error {
		for _, u := range st.users {
			if u.Username == username {
				out = &u
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (s *MemoryStore) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := s.run(func(st *memState) error {
		for _, u := range st.users {
			if u.IsAdmin {
				count++
			}
		}
		return nil
	})
	return count, err
}

// --- AuditStore Implementation ---

func (s *MemoryStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.run(func(st *memState) error {
		entry.ID = st.nextID()
		entry.CreatedAt = time.Now()
		st.auditLogs = append(st.auditLogs, *entry)
		return nil
	})
}

// AuditLogs returns a copy of the recorded audit entries.
func (s *MemoryStore) AuditLogs() []models.AuditLog {
	var out []models.AuditLog
	s.run(func(st *memState) error {
		out = append(out, st.auditLogs...)
		return nil
	})
	return out
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/repository"
)

var errBoom = errors.New("connection reset by peer")

// ---------- products ----------

type fakeProductRepo struct {
	mu       sync.Mutex
	products []*model.Product

	createErr  func(p *model.Product) error
	updateErr  func(p *model.Product) error
	findErr    func(name string) error
	deleteErr  map[uuid.UUID]error
	onCreate   func(p *model.Product)
	panicOn    string
	deleted    []uuid.UUID
	findCalls  int
	deleteCtxs []error
}

func newFakeProductRepo(existing ...*model.Product) *fakeProductRepo {
	return &fakeProductRepo{products: existing, deleteErr: map[uuid.UUID]error{}}
}

func (r *fakeProductRepo) FindByName(ctx context.Context, supplierID uuid.UUID, name string, excludeIDs []uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++

	if name == r.panicOn && name != "" {
		panic("nil map write")
	}
	if r.findErr != nil {
		if err := r.findErr(name); err != nil {
			return nil, err
		}
	}

	excluded := make(map[uuid.UUID]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	for _, p := range r.products {
		if p.SupplierID == supplierID && p.Name == name && !excluded[p.ID] {
			copied := *p
			return &copied, nil
		}
	}
	return nil, model.ErrProductNotFound
}

func (r *fakeProductRepo) Create(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	if r.createErr != nil {
		if err := r.createErr(p); err != nil {
			r.mu.Unlock()
			return err
		}
	}
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			r.mu.Unlock()
			return repository.ErrDuplicateSlug
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	copied := *p
	r.products = append(r.products, &copied)
	hook := r.onCreate
	r.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		if err := r.updateErr(p); err != nil {
			return err
		}
	}
	for i, existing := range r.products {
		if existing.ID == p.ID {
			copied := *p
			copied.Slug = existing.Slug
			copied.UpdatedAt = time.Now()
			r.products[i] = &copied
			return nil
		}
	}
	return model.ErrProductNotFound
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCtxs = append(r.deleteCtxs, ctx.Err())
	if err := r.deleteErr[id]; err != nil {
		return err
	}
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return model.ErrProductNotFound
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, model.ErrProductNotFound
}

func (r *fakeProductRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter model.ProductFilter) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Product, 0)
	for _, p := range r.products {
		if p.SupplierID != supplierID {
			continue
		}
		if filter == model.FilterActive && !p.IsActive || filter == model.FilterInactive && p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) ListWithExternalImages(ctx context.Context, mirroredPrefix string, limit int) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Product, 0)
	for _, p := range r.products {
		if p.IsActive && HasExternalImages(p.Images, mirroredPrefix) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateImages(ctx context.Context, id uuid.UUID, images []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			p.Images = images
			return nil
		}
	}
	return model.ErrProductNotFound
}

func (r *fakeProductRepo) byName(name string) []*model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Product
	for _, p := range r.products {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

func (r *fakeProductRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

// ---------- variations ----------

type fakeVariationRepo struct {
	mu         sync.Mutex
	rows       []*model.Variation
	createErr  func(v *model.Variation) error
	deleteErr  error
	findCalls  int
	deleteCall int
}

func (r *fakeVariationRepo) Find(ctx context.Context, productID uuid.UUID, variationType, value string) (*model.Variation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	for _, v := range r.rows {
		if v.ProductID == productID && v.VariationType == variationType && v.VariationValue == value {
			return v, nil
		}
	}
	return nil, model.ErrVariationNotFound
}

func (r *fakeVariationRepo) Create(ctx context.Context, v *model.Variation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		if err := r.createErr(v); err != nil {
			return err
		}
	}
	r.rows = append(r.rows, v)
	return nil
}

func (r *fakeVariationRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCall++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.rows[:0]
	for _, v := range r.rows {
		if v.ProductID != productID {
			kept = append(kept, v)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeVariationRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.Variation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Variation, 0)
	for _, v := range r.rows {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

// ---------- ledger ----------

type fakeImportRepo struct {
	mu          sync.Mutex
	runs        map[uuid.UUID]*model.ImportRun
	order       []uuid.UUID
	createErr   error
	finalizeErr error
	markErr     error
	listCalls   int
	writes      map[uuid.UUID]int
}

func newFakeImportRepo() *fakeImportRepo {
	return &fakeImportRepo{
		runs:   map[uuid.UUID]*model.ImportRun{},
		writes: map[uuid.UUID]int{},
	}
}

func (r *fakeImportRepo) Create(ctx context.Context, run *model.ImportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.Status = model.ImportStatusProcessing
	run.StartedAt = time.Now()
	run.CreatedAt = run.StartedAt.Add(time.Duration(len(r.order)) * time.Millisecond)
	copied := *run
	r.runs[run.ID] = &copied
	r.order = append(r.order, run.ID)
	return nil
}

func (r *fakeImportRepo) Finalize(ctx context.Context, run *model.ImportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalizeErr != nil {
		return r.finalizeErr
	}
	stored, ok := r.runs[run.ID]
	if !ok {
		return model.ErrImportNotFound
	}
	now := time.Now()
	stored.SuccessfulRows = run.SuccessfulRows
	stored.FailedRows = run.FailedRows
	stored.Errors = run.Errors
	stored.Status = run.Status
	stored.FileKey = run.FileKey
	stored.CompletedAt = &now
	r.writes[run.ID]++
	return nil
}

func (r *fakeImportRepo) MarkRolledBack(ctx context.Context, id uuid.UUID, errs []model.ImportError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	stored, ok := r.runs[id]
	if !ok {
		return model.ErrImportNotFound
	}
	stored.Status = model.ImportStatusRolledBack
	stored.Errors = errs
	stored.FailedRows = len(errs)
	r.writes[id]++
	return nil
}

func (r *fakeImportRepo) GetByID(ctx context.Context, supplierID, id uuid.UUID) (*model.ImportRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.SupplierID != supplierID {
		return nil, model.ErrImportNotFound
	}
	copied := *run
	return &copied, nil
}

func (r *fakeImportRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]*model.ImportRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := make([]*model.ImportRun, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		run := r.runs[r.order[i]]
		if run.SupplierID == supplierID {
			out = append(out, run)
		}
	}
	if offset >= len(out) {
		return []*model.ImportRun{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeImportRepo) only() *model.ImportRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) != 1 {
		return nil
	}
	return r.runs[r.order[0]]
}

// ---------- cache ----------

type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	deleted  []string
	patterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

// ---------- queue & storage ----------

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (e *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.objects[key] = data
	s.types[key] = contentType
	return "http://minio.local/agromarket/" + key, nil
}

type recordingHook struct {
	runs    []*model.ImportRun
	created [][]*model.Product
}

func (h *recordingHook) ImportCompleted(ctx context.Context, run *model.ImportRun, created []*model.Product) {
	h.runs = append(h.runs, run)
	h.created = append(h.created, created)
}

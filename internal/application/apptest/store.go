// Package apptest provee una implementación en memoria de los puertos de repositorio
// para pruebas de casos de uso. Run del TxRunner toma una instantánea y la restaura si fn falla.
// No es segura para uso concurrente.
package apptest

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

type stockKey struct{ productID, warehouseID int64 }

type state struct {
	warehouses map[int64]entity.Warehouse
	publishers map[int64]entity.Publisher
	authors    map[int64]entity.Author
	products   map[int64]entity.Product
	users      map[int64]entity.User
	movements  map[int64]entity.Movement
	lines      map[int64]entity.MovementLine
	stock      map[stockKey]entity.StockLevel
	seq        int64
	movSeq     int64
}

// Store base de datos en memoria.
type Store struct {
	st  state
	now func() time.Time
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		st: state{
			warehouses: map[int64]entity.Warehouse{},
			publishers: map[int64]entity.Publisher{},
			authors:    map[int64]entity.Author{},
			products:   map[int64]entity.Product{},
			users:      map[int64]entity.User{},
			movements:  map[int64]entity.Movement{},
			lines:      map[int64]entity.MovementLine{},
			stock:      map[stockKey]entity.StockLevel{},
		},
		now: time.Now,
	}
}

func (s *Store) snapshot() state {
	c := state{
		warehouses: make(map[int64]entity.Warehouse, len(s.st.warehouses)),
		publishers: make(map[int64]entity.Publisher, len(s.st.publishers)),
		authors:    make(map[int64]entity.Author, len(s.st.authors)),
		products:   make(map[int64]entity.Product, len(s.st.products)),
		users:      make(map[int64]entity.User, len(s.st.users)),
		movements:  make(map[int64]entity.Movement, len(s.st.movements)),
		lines:      make(map[int64]entity.MovementLine, len(s.st.lines)),
		stock:      make(map[stockKey]entity.StockLevel, len(s.st.stock)),
		seq:        s.st.seq,
		movSeq:     s.st.movSeq,
	}
	for k, v := range s.st.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.st.publishers {
		c.publishers[k] = v
	}
	for k, v := range s.st.authors {
		c.authors[k] = v
	}
	for k, v := range s.st.products {
		v.AuthorIDs = append([]int64(nil), v.AuthorIDs...)
		c.products[k] = v
	}
	for k, v := range s.st.users {
		c.users[k] = v
	}
	for k, v := range s.st.movements {
		c.movements[k] = v
	}
	for k, v := range s.st.lines {
		c.lines[k] = v
	}
	for k, v := range s.st.stock {
		c.stock[k] = v
	}
	return c
}

func (s *Store) nextID() int64 {
	s.st.seq++
	return s.st.seq
}

// Run implementa inventory.TxRunner: restaura la instantánea si fn devuelve error.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	snap := s.snapshot()
	if err := fn(s.Movements(), s.Stock(), s.Products()); err != nil {
		s.st = snap
		return err
	}
	return nil
}

// Quantity devuelve la cantidad del ledger (0 si no hay fila) y si la fila existe.
func (s *Store) Quantity(productID, warehouseID int64) (int64, bool) {
	l, ok := s.st.stock[stockKey{productID, warehouseID}]
	return l.Quantity, ok
}

// MovementCount número de movimientos persistidos.
func (s *Store) MovementCount() int { return len(s.st.movements) }

// LineCount número de líneas persistidas.
func (s *Store) LineCount() int { return len(s.st.lines) }

func (s *Store) Warehouses() repository.WarehouseRepository { return warehouseRepo{s} }
func (s *Store) Publishers() repository.PublisherRepository { return publisherRepo{s} }
func (s *Store) Authors() repository.AuthorRepository       { return authorRepo{s} }
func (s *Store) Products() repository.ProductRepository     { return productRepo{s} }
func (s *Store) Stock() repository.StockRepository          { return stockRepo{s} }
func (s *Store) Movements() repository.MovementRepository   { return movementRepo{s} }
func (s *Store) Users() repository.UserRepository           { return userRepo{s} }
func (s *Store) Reports() repository.ReportRepository       { return reportRepo{s} }

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- bodegas ---

type warehouseRepo struct{ s *Store }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	for _, o := range r.s.st.warehouses {
		if o.Name == w.Name {
			return domain.ErrDuplicate
		}
	}
	w.ID = r.s.nextID()
	w.CreatedAt, w.UpdatedAt = r.s.now(), r.s.now()
	r.s.st.warehouses[w.ID] = *w
	return nil
}

func (r warehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	w, ok := r.s.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	if _, ok := r.s.st.warehouses[w.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.st.warehouses {
		if o.ID != w.ID && o.Name == w.Name {
			return domain.ErrDuplicate
		}
	}
	w.UpdatedAt = r.s.now()
	r.s.st.warehouses[w.ID] = *w
	return nil
}

func (r warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	out := []*entity.Warehouse{}
	for _, id := range sortedIDs(r.s.st.warehouses) {
		w := r.s.st.warehouses[id]
		out = append(out, &w)
	}
	return page(out, limit, offset), nil
}

func (r warehouseRepo) DeleteUnused(_ context.Context, id int64) error {
	if _, ok := r.s.st.warehouses[id]; !ok {
		return domain.ErrNotFound
	}
	if r.inUse(id) {
		return domain.ErrInUse
	}
	delete(r.s.st.warehouses, id)
	for k := range r.s.st.stock {
		if k.warehouseID == id {
			delete(r.s.st.stock, k)
		}
	}
	for pid, p := range r.s.st.products {
		if p.HomeWarehouseID != nil && *p.HomeWarehouseID == id {
			p.HomeWarehouseID = nil
			r.s.st.products[pid] = p
		}
	}
	for mid, m := range r.s.st.movements {
		if m.OriginWarehouseID != nil && *m.OriginWarehouseID == id {
			m.OriginWarehouseID = nil
		}
		if m.DestinationWarehouseID != nil && *m.DestinationWarehouseID == id {
			m.DestinationWarehouseID = nil
		}
		r.s.st.movements[mid] = m
	}
	return nil
}

func (r warehouseRepo) inUse(id int64) bool {
	for _, l := range r.s.st.lines {
		m := r.s.st.movements[l.MovementID]
		if (m.OriginWarehouseID != nil && *m.OriginWarehouseID == id) ||
			(m.DestinationWarehouseID != nil && *m.DestinationWarehouseID == id) {
			return true
		}
	}
	for k, v := range r.s.st.stock {
		if k.warehouseID == id && v.Quantity > 0 {
			return true
		}
	}
	return false
}

// --- editoriales y autores ---

type publisherRepo struct{ s *Store }

func (r publisherRepo) Create(_ context.Context, p *entity.Publisher) error {
	for _, o := range r.s.st.publishers {
		if o.Name == p.Name {
			return domain.ErrDuplicate
		}
	}
	p.ID = r.s.nextID()
	p.CreatedAt, p.UpdatedAt = r.s.now(), r.s.now()
	r.s.st.publishers[p.ID] = *p
	return nil
}

func (r publisherRepo) GetByID(_ context.Context, id int64) (*entity.Publisher, error) {
	p, ok := r.s.st.publishers[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r publisherRepo) Update(_ context.Context, p *entity.Publisher) error {
	if _, ok := r.s.st.publishers[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.st.publishers {
		if o.ID != p.ID && o.Name == p.Name {
			return domain.ErrDuplicate
		}
	}
	p.UpdatedAt = r.s.now()
	r.s.st.publishers[p.ID] = *p
	return nil
}

func (r publisherRepo) List(_ context.Context, limit, offset int) ([]*entity.Publisher, error) {
	out := []*entity.Publisher{}
	for _, id := range sortedIDs(r.s.st.publishers) {
		p := r.s.st.publishers[id]
		out = append(out, &p)
	}
	return page(out, limit, offset), nil
}

func (r publisherRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.st.publishers[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.st.products {
		if p.PublisherID == id {
			return domain.ErrInUse
		}
	}
	delete(r.s.st.publishers, id)
	return nil
}

type authorRepo struct{ s *Store }

func (r authorRepo) Create(_ context.Context, a *entity.Author) error {
	a.ID = r.s.nextID()
	a.CreatedAt, a.UpdatedAt = r.s.now(), r.s.now()
	r.s.st.authors[a.ID] = *a
	return nil
}

func (r authorRepo) GetByID(_ context.Context, id int64) (*entity.Author, error) {
	a, ok := r.s.st.authors[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r authorRepo) GetByIDs(_ context.Context, ids []int64) ([]*entity.Author, error) {
	out := []*entity.Author{}
	for _, id := range ids {
		if a, ok := r.s.st.authors[id]; ok {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r authorRepo) Update(_ context.Context, a *entity.Author) error {
	if _, ok := r.s.st.authors[a.ID]; !ok {
		return domain.ErrNotFound
	}
	a.UpdatedAt = r.s.now()
	r.s.st.authors[a.ID] = *a
	return nil
}

func (r authorRepo) List(_ context.Context, limit, offset int) ([]*entity.Author, error) {
	out := []*entity.Author{}
	for _, id := range sortedIDs(r.s.st.authors) {
		a := r.s.st.authors[id]
		out = append(out, &a)
	}
	return page(out, limit, offset), nil
}

func (r authorRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.st.authors[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.st.authors, id)
	for pid, p := range r.s.st.products {
		kept := p.AuthorIDs[:0:0]
		for _, aid := range p.AuthorIDs {
			if aid != id {
				kept = append(kept, aid)
			}
		}
		p.AuthorIDs = kept
		r.s.st.products[pid] = p
	}
	return nil
}

// --- productos ---

type productRepo struct{ s *Store }

func (r productRepo) withOnHand(p entity.Product) *entity.Product {
	p.AuthorIDs = append([]int64(nil), p.AuthorIDs...)
	p.OnHand = 0
	if p.HomeWarehouseID != nil {
		p.OnHand = r.s.st.stock[stockKey{p.ID, *p.HomeWarehouseID}].Quantity
	}
	return &p
}

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.s.st.publishers[p.PublisherID]; !ok {
		return domain.ErrNotFound
	}
	p.ID = r.s.nextID()
	p.CreatedAt, p.UpdatedAt = r.s.now(), r.s.now()
	c := *p
	c.AuthorIDs = append([]int64(nil), p.AuthorIDs...)
	r.s.st.products[p.ID] = c
	return nil
}

func (r productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return r.withOnHand(p), nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	if _, ok := r.s.st.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = r.s.now()
	c := *p
	c.AuthorIDs = append([]int64(nil), p.AuthorIDs...)
	r.s.st.products[p.ID] = c
	return nil
}

func (r productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	out := []*entity.Product{}
	for _, id := range sortedIDs(r.s.st.products) {
		p := r.s.st.products[id]
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.WarehouseID != nil {
			if _, ok := r.s.st.stock[stockKey{p.ID, *f.WarehouseID}]; !ok {
				continue
			}
		}
		out = append(out, r.withOnHand(p))
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r productRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.st.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.st.products, id)
	for k := range r.s.st.stock {
		if k.productID == id {
			delete(r.s.st.stock, k)
		}
	}
	return nil
}

func (r productRepo) HasMovementLines(_ context.Context, id int64) (bool, error) {
	for _, l := range r.s.st.lines {
		if l.ProductID == id {
			return true, nil
		}
	}
	return false, nil
}

// --- ledger ---

type stockRepo struct{ s *Store }

func (r stockRepo) GetForUpdate(_ context.Context, productID, warehouseID int64) (*entity.StockLevel, error) {
	l, ok := r.s.st.stock[stockKey{productID, warehouseID}]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r stockRepo) ApplyDelta(_ context.Context, productID, warehouseID, delta int64) error {
	k := stockKey{productID, warehouseID}
	l, ok := r.s.st.stock[k]
	if !ok {
		if delta < 0 {
			return domain.ErrInsufficientStock
		}
		l = entity.StockLevel{ProductID: productID, WarehouseID: warehouseID}
	}
	if l.Quantity+delta < 0 {
		return domain.ErrInsufficientStock
	}
	if l.Quantity+delta > entity.MaxStockQuantity {
		return domain.ErrInvalidInput
	}
	l.Quantity += delta
	l.UpdatedAt = r.s.now()
	r.s.st.stock[k] = l
	return nil
}

func (r stockRepo) Set(_ context.Context, productID, warehouseID, quantity int64) error {
	if quantity < 0 {
		return domain.ErrInsufficientStock
	}
	if quantity > entity.MaxStockQuantity {
		return domain.ErrInvalidInput
	}
	r.s.st.stock[stockKey{productID, warehouseID}] = entity.StockLevel{
		ProductID: productID, WarehouseID: warehouseID, Quantity: quantity, UpdatedAt: r.s.now(),
	}
	return nil
}

func (r stockRepo) Ensure(_ context.Context, productID, warehouseID int64) error {
	k := stockKey{productID, warehouseID}
	if _, ok := r.s.st.stock[k]; !ok {
		r.s.st.stock[k] = entity.StockLevel{ProductID: productID, WarehouseID: warehouseID, UpdatedAt: r.s.now()}
	}
	return nil
}

func (r stockRepo) ListByWarehouse(_ context.Context, warehouseID int64) ([]*entity.StockLevel, error) {
	out := []*entity.StockLevel{}
	for _, pid := range sortedIDs(r.s.st.products) {
		if l, ok := r.s.st.stock[stockKey{pid, warehouseID}]; ok {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r stockRepo) ListByProduct(_ context.Context, productID int64) ([]*entity.StockLevel, error) {
	out := []*entity.StockLevel{}
	for _, wid := range sortedIDs(r.s.st.warehouses) {
		if l, ok := r.s.st.stock[stockKey{productID, wid}]; ok {
			out = append(out, &l)
		}
	}
	return out, nil
}

// --- movimientos ---

type movementRepo struct{ s *Store }

func (r movementRepo) NextID(_ context.Context) (int64, error) {
	r.s.st.movSeq++
	return r.s.st.movSeq, nil
}

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	c := *m
	c.Lines = nil
	r.s.st.movements[m.ID] = c
	return nil
}

func (r movementRepo) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	m, ok := r.s.st.movements[id]
	if !ok {
		return nil, nil
	}
	for _, lid := range sortedIDs(r.s.st.lines) {
		l := r.s.st.lines[lid]
		if l.MovementID == id {
			m.Lines = append(m.Lines, &l)
		}
	}
	return &m, nil
}

func (r movementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	ids := sortedIDs(r.s.st.movements)
	out := []*entity.Movement{}
	for i := len(ids) - 1; i >= 0; i-- {
		m, _ := r.GetByID(ctx, ids[i])
		if f.WarehouseID != nil {
			w := *f.WarehouseID
			if !(m.OriginWarehouseID != nil && *m.OriginWarehouseID == w) &&
				!(m.DestinationWarehouseID != nil && *m.DestinationWarehouseID == w) {
				continue
			}
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, m)
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r movementRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.st.movements[id]; !ok {
		return domain.ErrNotFound
	}
	for _, l := range r.s.st.lines {
		if l.MovementID == id {
			return domain.ErrInUse
		}
	}
	delete(r.s.st.movements, id)
	return nil
}

func (r movementRepo) CreateLine(_ context.Context, l *entity.MovementLine) error {
	if _, ok := r.s.st.movements[l.MovementID]; !ok {
		return domain.ErrNotFound
	}
	l.ID = r.s.nextID()
	r.s.st.lines[l.ID] = *l
	return nil
}

func (r movementRepo) GetLineForUpdate(_ context.Context, id int64) (*entity.MovementLine, error) {
	l, ok := r.s.st.lines[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r movementRepo) DeleteLine(_ context.Context, id int64) error {
	if _, ok := r.s.st.lines[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.st.lines, id)
	return nil
}

// --- usuarios ---

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	for _, o := range r.s.st.users {
		if o.Username == u.Username {
			return domain.ErrDuplicate
		}
	}
	u.ID = r.s.nextID()
	u.CreatedAt, u.UpdatedAt = r.s.now(), r.s.now()
	r.s.st.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.s.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	out := []*entity.User{}
	for _, id := range sortedIDs(r.s.st.users) {
		u := r.s.st.users[id]
		out = append(out, &u)
	}
	return page(out, limit, offset), nil
}

// --- informes ---

type reportRepo struct{ s *Store }

func (r reportRepo) ProductsPerWarehouse(_ context.Context) ([]repository.WarehouseProductCount, error) {
	out := []repository.WarehouseProductCount{}
	for _, wid := range sortedIDs(r.s.st.warehouses) {
		row := repository.WarehouseProductCount{WarehouseID: wid, WarehouseName: r.s.st.warehouses[wid].Name}
		for _, p := range r.s.st.products {
			if p.HomeWarehouseID != nil && *p.HomeWarehouseID == wid {
				row.ProductCount++
			}
		}
		for k, l := range r.s.st.stock {
			if k.warehouseID == wid {
				row.Units += l.Quantity
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (r reportRepo) ProductsPerPublisher(_ context.Context) ([]repository.PublisherTypeCount, error) {
	out := []repository.PublisherTypeCount{}
	for _, pid := range sortedIDs(r.s.st.publishers) {
		name := r.s.st.publishers[pid].Name
		counts := map[entity.ProductType]int64{}
		for _, p := range r.s.st.products {
			if p.PublisherID == pid {
				counts[p.Type]++
			}
		}
		if len(counts) == 0 {
			out = append(out, repository.PublisherTypeCount{PublisherID: pid, PublisherName: name})
			continue
		}
		for _, t := range entity.ProductTypes {
			if c, ok := counts[t]; ok {
				out = append(out, repository.PublisherTypeCount{PublisherID: pid, PublisherName: name, Type: t, Count: c})
			}
		}
	}
	return out, nil
}

func (r reportRepo) Movements(ctx context.Context, from, to *time.Time, limit int) ([]repository.MovementRow, error) {
	list, _ := movementRepo(r).List(ctx, repository.MovementFilter{From: from, To: to, Limit: limit})
	out := make([]repository.MovementRow, 0, len(list))
	for _, m := range list {
		row := repository.MovementRow{ID: m.ID, Code: m.Code, CreatedAt: m.CreatedAt, LineCount: int64(len(m.Lines))}
		if m.OriginWarehouseID != nil {
			row.OriginName = r.s.st.warehouses[*m.OriginWarehouseID].Name
		}
		if m.DestinationWarehouseID != nil {
			row.DestinationName = r.s.st.warehouses[*m.DestinationWarehouseID].Name
		}
		row.Username = r.s.st.users[m.UserID].Username
		for _, l := range m.Lines {
			row.Units += l.Quantity
		}
		out = append(out, row)
	}
	return out, nil
}

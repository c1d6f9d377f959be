package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.StockRepository         = (*stockRepo)(nil)
	_ repository.ProductRepository       = (*productRepo)(nil)
	_ repository.UserRepository          = (*userRepo)(nil)
	_ repository.TaskRepository          = (*taskRepo)(nil)
	_ repository.TaskProductRepository   = (*taskProductRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
)

// ---- stock ----

type stockRepo struct{ view }

func (r *stockRepo) withProduct(d *state, s *entity.Stock) *entity.Stock {
	c := *s
	if p, ok := d.products[s.ProductID]; ok {
		c.ProductName, c.ProductSKU, c.UnitPrice = p.Name, p.SKU, p.UnitPrice
	}
	return &c
}

func (r *stockRepo) Create(_ context.Context, s *entity.Stock) error {
	var err error
	r.with(func(d *state) {
		for _, existing := range d.stocks {
			if existing.ProductID == s.ProductID {
				err = domain.ErrDuplicate
				return
			}
		}
		c := *s
		d.stocks[s.ID] = &c
	})
	return err
}

func (r *stockRepo) GetByID(_ context.Context, id string) (out *entity.Stock, err error) {
	r.with(func(d *state) {
		if s, ok := d.stocks[id]; ok {
			out = r.withProduct(d, s)
		}
	})
	return out, nil
}

func (r *stockRepo) GetByProductID(_ context.Context, productID string) (out *entity.Stock, err error) {
	r.with(func(d *state) {
		for _, s := range d.stocks {
			if s.ProductID == productID {
				out = r.withProduct(d, s)
				return
			}
		}
	})
	return out, nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, id string) (*entity.Stock, error) {
	return r.GetByID(ctx, id)
}

func (r *stockRepo) GetByProductForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.GetByProductID(ctx, productID)
}

func (r *stockRepo) Update(_ context.Context, s *entity.Stock) error {
	var err error
	r.with(func(d *state) {
		if _, ok := d.stocks[s.ID]; !ok {
			err = domain.NewNotFound("Stock", s.ID)
			return
		}
		c := *s
		c.ProductName, c.ProductSKU, c.UnitPrice = "", "", decimal.Zero
		d.stocks[s.ID] = &c
	})
	return err
}

func (r *stockRepo) filter(keep func(*entity.Stock) bool, less func(a, b *entity.Stock) bool) []*entity.Stock {
	var out []*entity.Stock
	r.with(func(d *state) {
		for _, s := range d.stocks {
			if keep(s) {
				out = append(out, r.withProduct(d, s))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if less != nil && less(out[i], out[j]) != less(out[j], out[i]) {
			return less(out[i], out[j])
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *stockRepo) ListLowStock(context.Context) ([]*entity.Stock, error) {
	return r.filter(func(s *entity.Stock) bool { return s.IsLowStock() },
		func(a, b *entity.Stock) bool { return a.QuantityAvailable < b.QuantityAvailable }), nil
}

func (r *stockRepo) ListCritical(context.Context) ([]*entity.Stock, error) {
	return r.filter(func(s *entity.Stock) bool { return s.IsCritical() },
		func(a, b *entity.Stock) bool { return a.LastUpdated.After(b.LastUpdated) }), nil
}

func (r *stockRepo) ListOutOfStock(context.Context) ([]*entity.Stock, error) {
	return r.filter(func(s *entity.Stock) bool { return s.QuantityAvailable == 0 }, nil), nil
}

func (r *stockRepo) ListMostReserved(_ context.Context, limit int) ([]*entity.Stock, error) {
	list := r.filter(func(s *entity.Stock) bool { return s.QuantityReserved > 0 },
		func(a, b *entity.Stock) bool { return a.QuantityReserved > b.QuantityReserved })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *stockRepo) TotalValue(context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range r.filter(func(*entity.Stock) bool { return true }, nil) {
		total = total.Add(s.AvailableValue())
	}
	return total, nil
}

// ---- product ----

type productRepo struct{ view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	var err error
	r.with(func(d *state) {
		for _, existing := range d.products {
			if existing.SKU == p.SKU {
				err = domain.ErrDuplicate
				return
			}
		}
		c := *p
		d.products[p.ID] = &c
	})
	return err
}

func (r *productRepo) GetByID(_ context.Context, id string) (out *entity.Product, err error) {
	r.with(func(d *state) {
		if p, ok := d.products[id]; ok {
			c := *p
			out = &c
		}
	})
	return out, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (out *entity.Product, err error) {
	r.with(func(d *state) {
		for _, p := range d.products {
			if p.SKU == sku {
				c := *p
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	var err error
	r.with(func(d *state) {
		if _, ok := d.products[p.ID]; !ok {
			err = domain.NewNotFound("Product", p.ID)
			return
		}
		c := *p
		d.products[p.ID] = &c
	})
	return err
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.with(func(d *state) {
		for _, p := range d.products {
			c := *p
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, limit, offset), nil
}

func (r *productRepo) Count(context.Context) (n int, err error) {
	r.with(func(d *state) { n = len(d.products) })
	return n, nil
}

// Delete borra el producto y su stock (cascada como en la base de datos).
func (r *productRepo) Delete(_ context.Context, id string) error {
	r.with(func(d *state) {
		delete(d.products, id)
		for sid, s := range d.stocks {
			if s.ProductID == id {
				delete(d.stocks, sid)
			}
		}
		for tid, tp := range d.taskProducts {
			if tp.ProductID == id {
				delete(d.taskProducts, tid)
			}
		}
	})
	return nil
}

// ---- user ----

type userRepo struct{ view }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	var err error
	r.with(func(d *state) {
		for _, existing := range d.users {
			if strings.EqualFold(existing.Email, u.Email) {
				err = domain.ErrEmailAlreadyExists
				return
			}
		}
		c := *u
		d.users[u.ID] = &c
	})
	return err
}

func (r *userRepo) GetByID(_ context.Context, id string) (out *entity.User, err error) {
	r.with(func(d *state) {
		if u, ok := d.users[id]; ok {
			c := *u
			out = &c
		}
	})
	return out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (out *entity.User, err error) {
	r.with(func(d *state) {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				c := *u
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *userRepo) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	var err error
	r.with(func(d *state) {
		if _, ok := d.users[u.ID]; !ok {
			err = domain.NewNotFound("User", u.ID)
			return
		}
		c := *u
		d.users[u.ID] = &c
	})
	return err
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	r.with(func(d *state) {
		for _, u := range d.users {
			c := *u
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return paginate(out, limit, offset), nil
}

// ---- task ----

type taskRepo struct{ view }

func (r *taskRepo) Create(_ context.Context, t *entity.Task) error {
	r.with(func(d *state) { d.tasks[t.ID] = copyTask(t) })
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id string) (out *entity.Task, err error) {
	r.with(func(d *state) {
		if t, ok := d.tasks[id]; ok {
			out = copyTask(t)
		}
	})
	return out, nil
}

func (r *taskRepo) GetForUpdate(ctx context.Context, id string) (*entity.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *taskRepo) Update(_ context.Context, t *entity.Task) error {
	var err error
	r.with(func(d *state) {
		if _, ok := d.tasks[t.ID]; !ok {
			err = domain.NewNotFound("Task", t.ID)
			return
		}
		d.tasks[t.ID] = copyTask(t)
	})
	return err
}

func (r *taskRepo) Delete(_ context.Context, id string) error {
	r.with(func(d *state) {
		delete(d.tasks, id)
		for tid, tp := range d.taskProducts {
			if tp.TaskID == id {
				delete(d.taskProducts, tid)
			}
		}
	})
	return nil
}

func (r *taskRepo) filter(keep func(*entity.Task) bool) []*entity.Task {
	var out []*entity.Task
	r.with(func(d *state) {
		for _, t := range d.tasks {
			if keep(t) {
				out = append(out, copyTask(t))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *taskRepo) List(_ context.Context, limit, offset int) ([]*entity.Task, error) {
	return paginate(r.filter(func(*entity.Task) bool { return true }), limit, offset), nil
}

func (r *taskRepo) CountActiveByAssignee(_ context.Context, userID string) (int, error) {
	return len(r.filter(func(t *entity.Task) bool { return t.IsAssignedTo(userID) && t.IsActive() })), nil
}

func (r *taskRepo) CountByStatus(context.Context) (map[entity.TaskStatus]int, error) {
	out := map[entity.TaskStatus]int{}
	for _, t := range r.filter(func(*entity.Task) bool { return true }) {
		out[t.Status]++
	}
	return out, nil
}

func (r *taskRepo) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	list, _ := r.ListOverdue(ctx, now)
	return len(list), nil
}

func (r *taskRepo) ListByAssignee(_ context.Context, userID string) ([]*entity.Task, error) {
	return r.filter(func(t *entity.Task) bool { return t.IsAssignedTo(userID) }), nil
}

func (r *taskRepo) ListByCreator(_ context.Context, userID string) ([]*entity.Task, error) {
	return r.filter(func(t *entity.Task) bool { return t.CreatedBy == userID }), nil
}

func (r *taskRepo) ListUnassigned(context.Context) ([]*entity.Task, error) {
	list := r.filter(func(t *entity.Task) bool { return t.AssignedTo == nil && t.Status != entity.TaskCancelled })
	sort.SliceStable(list, func(i, j int) bool { return priorityRank(list[i].Priority) > priorityRank(list[j].Priority) })
	return list, nil
}

func (r *taskRepo) ListByStatus(_ context.Context, status entity.TaskStatus) ([]*entity.Task, error) {
	return r.filter(func(t *entity.Task) bool { return t.Status == status }), nil
}

func (r *taskRepo) ListOverdue(_ context.Context, now time.Time) ([]*entity.Task, error) {
	return r.filter(func(t *entity.Task) bool { return t.IsOverdue(now) }), nil
}

func (r *taskRepo) ListHighPriorityActive(context.Context) ([]*entity.Task, error) {
	return r.filter(func(t *entity.Task) bool { return t.Priority == entity.PriorityHigh && t.IsActive() }), nil
}

func (r *taskRepo) Search(_ context.Context, text string) ([]*entity.Task, error) {
	q := strings.ToLower(text)
	return r.filter(func(t *entity.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q)
	}), nil
}

func priorityRank(p entity.TaskPriority) int {
	switch p {
	case entity.PriorityHigh:
		return 3
	case entity.PriorityMedium:
		return 2
	case entity.PriorityLow:
		return 1
	}
	return 0
}

// ---- task product ----

type taskProductRepo struct{ view }

func (r *taskProductRepo) enrich(d *state, tp *entity.TaskProduct) *entity.TaskProduct {
	c := *tp
	if p, ok := d.products[tp.ProductID]; ok {
		c.ProductName, c.ProductSKU = p.Name, p.SKU
	}
	if t, ok := d.tasks[tp.TaskID]; ok {
		c.TaskStatus = t.Status
	}
	return &c
}

func (r *taskProductRepo) Create(_ context.Context, tp *entity.TaskProduct) error {
	var err error
	r.with(func(d *state) {
		for _, existing := range d.taskProducts {
			if existing.TaskID == tp.TaskID && existing.ProductID == tp.ProductID {
				err = domain.ErrDuplicate
				return
			}
		}
		c := *tp
		d.taskProducts[tp.ID] = &c
	})
	return err
}

func (r *taskProductRepo) GetByID(_ context.Context, id string) (out *entity.TaskProduct, err error) {
	r.with(func(d *state) {
		if tp, ok := d.taskProducts[id]; ok {
			out = r.enrich(d, tp)
		}
	})
	return out, nil
}

func (r *taskProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.TaskProduct, error) {
	return r.GetByID(ctx, id)
}

func (r *taskProductRepo) GetByTaskAndProduct(_ context.Context, taskID, productID string) (out *entity.TaskProduct, err error) {
	r.with(func(d *state) {
		for _, tp := range d.taskProducts {
			if tp.TaskID == taskID && tp.ProductID == productID {
				out = r.enrich(d, tp)
				return
			}
		}
	})
	return out, nil
}

func (r *taskProductRepo) Update(_ context.Context, tp *entity.TaskProduct) error {
	var err error
	r.with(func(d *state) {
		if _, ok := d.taskProducts[tp.ID]; !ok {
			err = domain.NewNotFound("TaskProduct", tp.ID)
			return
		}
		c := *tp
		d.taskProducts[tp.ID] = &c
	})
	return err
}

func (r *taskProductRepo) Delete(_ context.Context, id string) error {
	r.with(func(d *state) { delete(d.taskProducts, id) })
	return nil
}

func (r *taskProductRepo) filter(keep func(*entity.TaskProduct) bool) []*entity.TaskProduct {
	var out []*entity.TaskProduct
	r.with(func(d *state) {
		for _, tp := range d.taskProducts {
			e := r.enrich(d, tp)
			if keep(e) {
				out = append(out, e)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *taskProductRepo) ListByTask(_ context.Context, taskID string) ([]*entity.TaskProduct, error) {
	return r.filter(func(tp *entity.TaskProduct) bool { return tp.TaskID == taskID }), nil
}

func (r *taskProductRepo) ListByProduct(_ context.Context, productID string) ([]*entity.TaskProduct, error) {
	return r.filter(func(tp *entity.TaskProduct) bool { return tp.ProductID == productID }), nil
}

func (r *taskProductRepo) ListUnusedByTask(_ context.Context, taskID string) ([]*entity.TaskProduct, error) {
	return r.filter(func(tp *entity.TaskProduct) bool { return tp.TaskID == taskID && tp.QuantityUsed == 0 }), nil
}

func (r *taskProductRepo) ListUsedByTask(_ context.Context, taskID string) ([]*entity.TaskProduct, error) {
	return r.filter(func(tp *entity.TaskProduct) bool { return tp.TaskID == taskID && tp.QuantityUsed > 0 }), nil
}

func (r *taskProductRepo) ListDiscrepancies(context.Context) ([]*entity.TaskProduct, error) {
	return r.filter(func(tp *entity.TaskProduct) bool { return tp.QuantityUsed != tp.Quantity }), nil
}

func (r *taskProductRepo) TotalReservedForProduct(_ context.Context, productID string) (int, error) {
	total := 0
	for _, tp := range r.filter(func(tp *entity.TaskProduct) bool {
		return tp.ProductID == productID && !tp.TaskStatus.IsTerminal()
	}) {
		total += tp.Quantity
	}
	return total, nil
}

func (r *taskProductRepo) CountActiveByProduct(_ context.Context, productID string) (int, error) {
	return len(r.filter(func(tp *entity.TaskProduct) bool {
		return tp.ProductID == productID && !tp.TaskStatus.IsTerminal()
	})), nil
}

// ---- movements ----

type movementRepo struct{ view }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.with(func(d *state) {
		c := *m
		d.movements = append(d.movements, &c)
	})
	return nil
}

func (r *movementRepo) ListByStock(_ context.Context, stockID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	r.with(func(d *state) {
		for i := len(d.movements) - 1; i >= 0; i-- {
			if d.movements[i].StockID == stockID {
				c := *d.movements[i]
				out = append(out, &c)
			}
		}
	})
	return paginate(out, limit, offset), nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

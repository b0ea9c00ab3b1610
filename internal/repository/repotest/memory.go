// Package repotest provides in-memory repositories with the same not-found
// behaviour as the gorm ones, for tests that do not need postgres.
package repotest

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"food_ordering/internal/models"
	"food_ordering/internal/repository"

	"gorm.io/gorm"
)

// Store backs every repository with plain maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	nextID        uint
	products      map[uint]models.Product
	orders        map[uint]models.Order
	reservations  map[uint]models.Reservation
	customers     map[uint]models.Customer
	admins        map[uint]models.Admin
	notifications map[uint]models.Notification

	// FailCreateOrder makes the next CreateWithItems call fail.
	FailCreateOrder error
}

func NewStore() *Store {
	return &Store{
		products:      make(map[uint]models.Product),
		orders:        make(map[uint]models.Order),
		reservations:  make(map[uint]models.Reservation),
		customers:     make(map[uint]models.Customer),
		admins:        make(map[uint]models.Admin),
		notifications: make(map[uint]models.Notification),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Products() repository.ProductRepository         { return productRepo{s} }
func (s *Store) Orders() repository.OrderRepository             { return orderRepo{s} }
func (s *Store) OrderItems() repository.OrderItemRepository     { return orderItemRepo{s} }
func (s *Store) Reservations() repository.ReservationRepository { return reservationRepo{s} }
func (s *Store) Customers() repository.CustomerRepository       { return customerRepo{s} }
func (s *Store) Admins() repository.AdminRepository             { return adminRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository {
	return notificationRepo{s}
}

type productRepo struct{ s *Store }

func (r productRepo) Create(p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) GetByID(id uint) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r productRepo) GetByIDs(ids []uint) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r productRepo) list(availableOnly bool) []models.Product {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Product
	for _, p := range r.s.products {
		if availableOnly && !p.Available {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Subcategory != b.Subcategory {
			return a.Subcategory < b.Subcategory
		}
		return a.Name < b.Name
	})
	return out
}

func (r productRepo) ListAvailable() ([]models.Product, error) { return r.list(true), nil }
func (r productRepo) ListAll() ([]models.Product, error)       { return r.list(false), nil }

func (r productRepo) Update(p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	p.UpdatedAt = time.Now()
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r productRepo) SetAvailability(id uint, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Available = available
	r.s.products[id] = p
	return nil
}

func (r productRepo) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products)), nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) CreateWithItems(o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailCreateOrder; err != nil {
		r.s.FailCreateOrder = nil
		return err
	}
	o.ID = r.s.id()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	if o.Status == "" {
		o.Status = string(models.OrderPending)
	}
	for i := range o.Items {
		o.Items[i].ID = r.s.id()
		o.Items[i].OrderID = o.ID
	}
	stored := *o
	stored.Items = append([]models.OrderItem(nil), o.Items...)
	r.s.orders[o.ID] = stored
	return nil
}

func (r orderRepo) GetByID(id uint) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

func (r orderRepo) sorted(keep func(models.Order) bool) []models.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Order
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out
}

func (r orderRepo) GetByCustomerID(customerID uint) ([]models.Order, error) {
	return r.sorted(func(o models.Order) bool {
		return o.CustomerID != nil && *o.CustomerID == customerID
	}), nil
}

func (r orderRepo) Search(f repository.OrderFilter) ([]models.Order, error) {
	term := strings.ToLower(strings.TrimSpace(f.Query))
	id, idErr := strconv.ParseUint(strings.TrimPrefix(term, "#"), 10, 64)
	out := r.sorted(func(o models.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if term == "" {
			return true
		}
		if idErr == nil && uint64(o.ID) == id {
			return true
		}
		return strings.Contains(strings.ToLower(o.CustomerName), term) ||
			strings.Contains(strings.ToLower(o.CustomerEmail), term) ||
			strings.Contains(o.CustomerPhone, term)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r orderRepo) Count() (int64, error) {
	return int64(len(r.sorted(func(models.Order) bool { return true }))), nil
}

func (r orderRepo) CountByStatus(status string) (int64, error) {
	return int64(len(r.sorted(func(o models.Order) bool { return o.Status == status }))), nil
}

func (r orderRepo) CountSince(t time.Time) (int64, error) {
	return int64(len(r.sorted(func(o models.Order) bool { return !o.OrderDate.Before(t) }))), nil
}

func (r orderRepo) Recent(limit int) ([]models.Order, error) {
	out := r.sorted(func(models.Order) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r orderRepo) UpdateStatus(id uint, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o
	return nil
}

type orderItemRepo struct{ s *Store }

func (r orderItemRepo) GetByOrderID(orderID uint) ([]models.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, nil
	}
	return append([]models.OrderItem(nil), o.Items...), nil
}

func (r orderItemRepo) TopProducts(limit int) ([]repository.ProductSales, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[uint]*repository.ProductSales)
	for _, o := range r.s.orders {
		if o.Status == string(models.OrderCancelled) {
			continue
		}
		for _, it := range o.Items {
			ps, ok := totals[it.ProductID]
			if !ok {
				ps = &repository.ProductSales{ProductID: it.ProductID, ProductName: it.ProductName}
				totals[it.ProductID] = ps
			}
			ps.Quantity += int64(it.Quantity)
		}
	}
	out := make([]repository.ProductSales, 0, len(totals))
	for _, ps := range totals {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity == out[j].Quantity {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Quantity > out[j].Quantity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type reservationRepo struct{ s *Store }

func (r reservationRepo) Create(res *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res.ID = r.s.id()
	if res.Status == "" {
		res.Status = string(models.ReservationPending)
	}
	res.CreatedAt = time.Now()
	r.s.reservations[res.ID] = *res
	return nil
}

func (r reservationRepo) GetByID(id uint) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &res, nil
}

func (r reservationRepo) filter(keep func(models.Reservation) bool, asc bool) []models.Reservation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Reservation
	for _, res := range r.s.reservations {
		if keep(res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ReservationDate.Equal(b.ReservationDate) {
			return a.ReservationDate.Before(b.ReservationDate) == asc
		}
		return (a.ReservationTime < b.ReservationTime) == asc
	})
	return out
}

func (r reservationRepo) List() ([]models.Reservation, error) {
	return r.filter(func(models.Reservation) bool { return true }, false), nil
}

func pending(res models.Reservation) bool {
	return res.Status == string(models.ReservationPending)
}

func (r reservationRepo) ListPending(limit int) ([]models.Reservation, error) {
	out := r.filter(pending, true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r reservationRepo) CountPending() (int64, error) {
	return int64(len(r.filter(pending, true))), nil
}

func (r reservationRepo) GetByEmail(email string) ([]models.Reservation, error) {
	return r.filter(func(res models.Reservation) bool { return res.GuestEmail == email }, false), nil
}

func (r reservationRepo) Update(res *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[res.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.reservations[res.ID] = *res
	return nil
}

// ErrDuplicateKey mimics a unique constraint violation.
var ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

type customerRepo struct{ s *Store }

func (r customerRepo) Create(c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.customers {
		if existing.Email == c.Email {
			return ErrDuplicateKey
		}
	}
	c.ID = r.s.id()
	c.CreatedAt = time.Now()
	r.s.customers[c.ID] = *c
	return nil
}

func (r customerRepo) GetByID(id uint) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r customerRepo) GetByEmail(email string) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r customerRepo) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.customers)), nil
}

type adminRepo struct{ s *Store }

func (r adminRepo) Create(a *models.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if existing.Username == a.Username {
			return ErrDuplicateKey
		}
	}
	a.ID = r.s.id()
	r.s.admins[a.ID] = *a
	return nil
}

func (r adminRepo) GetByID(id uint) (*models.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r adminRepo) GetByUsername(username string) (*models.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.id()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) List(limit int, unreadOnly bool) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, n := range r.s.notifications {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r notificationRepo) CountUnread() (int64, error) {
	out, _ := r.List(0, true)
	return int64(len(out)), nil
}

func (r notificationRepo) MarkRead(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return nil
}

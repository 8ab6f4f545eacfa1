// Package ledgertest provides in-memory repository implementations for
// service tests. The fakes keep aggregates in maps and preserve the
// repository error contracts (ErrNotFound, ErrAlreadyExists) but do not
// simulate row locks or optimistic version checks.
package ledgertest

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/distribo/backend/internal/domain/partner"
	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// NewScope builds a StaticScope wired with fresh in-memory repositories
func NewScope() *ledger.StaticScope {
	return &ledger.StaticScope{
		CustomerRepo: NewCustomerRepo(),
		DebtTxRepo:   NewDebtTransactionRepo(),
		ProductRepo:  NewProductRepo(),
		OrderRepo:    NewOrderRepo(),
		PaymentRepo:  NewPaymentRepo(),
		DeliveryRepo: NewDeliveryRepo(),
		RegisterRepo: NewRegisterRepo(),
		IdemRepo:     NewIdempotencyRepo(),
	}
}

// CustomerRepo is an in-memory partner.CustomerRepository
type CustomerRepo struct {
	items map[uuid.UUID]*partner.Customer
}

// NewCustomerRepo creates an empty customer repository
func NewCustomerRepo() *CustomerRepo {
	return &CustomerRepo{items: make(map[uuid.UUID]*partner.Customer)}
}

func (r *CustomerRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*partner.Customer, error) {
	c, ok := r.items[id]
	if !ok || c.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *CustomerRepo) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*partner.Customer, error) {
	return r.FindByIDForOrg(ctx, orgID, id)
}

func (r *CustomerRepo) FindByCode(_ context.Context, orgID uuid.UUID, code string) (*partner.Customer, error) {
	for _, c := range r.items {
		if c.OrgID == orgID && c.Code == code {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *CustomerRepo) FindAllForOrg(_ context.Context, orgID uuid.UUID, _ shared.Filter) ([]partner.Customer, error) {
	var out []partner.Customer
	for _, c := range r.items {
		if c.OrgID == orgID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *CustomerRepo) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	all, _ := r.FindAllForOrg(ctx, orgID, filter)
	return int64(len(all)), nil
}

func (r *CustomerRepo) Save(_ context.Context, customer *partner.Customer) error {
	r.items[customer.ID] = customer
	return nil
}

// DebtTransactionRepo is an in-memory partner.DebtTransactionRepository
type DebtTransactionRepo struct {
	items []*partner.DebtTransaction
}

// NewDebtTransactionRepo creates an empty debt transaction repository
func NewDebtTransactionRepo() *DebtTransactionRepo {
	return &DebtTransactionRepo{}
}

func (r *DebtTransactionRepo) Save(_ context.Context, tx *partner.DebtTransaction) error {
	r.items = append(r.items, tx)
	return nil
}

func (r *DebtTransactionRepo) FindByCustomer(_ context.Context, orgID, customerID uuid.UUID, from, to time.Time) ([]partner.DebtTransaction, error) {
	var out []partner.DebtTransaction
	for _, tx := range r.items {
		if tx.OrgID != orgID || tx.CustomerID != customerID {
			continue
		}
		if tx.TransactionDate.Before(from) || tx.TransactionDate.After(to) {
			continue
		}
		out = append(out, *tx)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TransactionDate.Before(out[j].TransactionDate)
	})
	return out, nil
}

func (r *DebtTransactionRepo) FindBySource(_ context.Context, orgID uuid.UUID, sourceType partner.DebtSourceType, sourceID uuid.UUID) ([]partner.DebtTransaction, error) {
	var out []partner.DebtTransaction
	for _, tx := range r.items {
		if tx.OrgID == orgID && tx.SourceType == sourceType && tx.SourceID != nil && *tx.SourceID == sourceID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

// All returns every stored transaction, for assertions
func (r *DebtTransactionRepo) All() []*partner.DebtTransaction {
	return r.items
}

// ProductRepo is an in-memory catalog.ProductRepository
type ProductRepo struct {
	items map[uuid.UUID]*catalog.Product
}

// NewProductRepo creates an empty product repository
func NewProductRepo() *ProductRepo {
	return &ProductRepo{items: make(map[uuid.UUID]*catalog.Product)}
}

func (r *ProductRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.items[id]
	if !ok || p.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepo) FindByIDsForUpdate(_ context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.items[id]; ok && p.OrgID == orgID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (r *ProductRepo) FindByCode(_ context.Context, orgID uuid.UUID, code string) (*catalog.Product, error) {
	for _, p := range r.items {
		if p.OrgID == orgID && p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *ProductRepo) FindAllForOrg(_ context.Context, orgID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.items {
		if p.OrgID == orgID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ProductRepo) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	all, _ := r.FindAllForOrg(ctx, orgID, filter)
	return int64(len(all)), nil
}

func (r *ProductRepo) Save(_ context.Context, product *catalog.Product) error {
	copied := *product
	r.items[product.ID] = &copied
	return nil
}

// OrderRepo is an in-memory trade.OrderRepository
type OrderRepo struct {
	items map[uuid.UUID]*trade.Order
}

// NewOrderRepo creates an empty order repository
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{items: make(map[uuid.UUID]*trade.Order)}
}

func (r *OrderRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*trade.Order, error) {
	o, ok := r.items[id]
	if !ok || o.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *OrderRepo) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*trade.Order, error) {
	return r.FindByIDForOrg(ctx, orgID, id)
}

func (r *OrderRepo) FindByOrderNumber(_ context.Context, orgID uuid.UUID, orderNumber string) (*trade.Order, error) {
	for _, o := range r.items {
		if o.OrgID == orgID && o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *OrderRepo) FindOpenByCustomer(_ context.Context, orgID, customerID uuid.UUID, _ bool) ([]trade.Order, error) {
	var out []trade.Order
	for _, o := range r.items {
		if o.OrgID == orgID && o.CustomerID == customerID && o.IsOpen() {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *OrderRepo) FindByCustomer(_ context.Context, orgID, customerID uuid.UUID, _ shared.Filter) ([]trade.Order, error) {
	var out []trade.Order
	for _, o := range r.items {
		if o.OrgID == orgID && o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *OrderRepo) FindAllForOrg(_ context.Context, orgID uuid.UUID, _ shared.Filter) ([]trade.Order, error) {
	var out []trade.Order
	for _, o := range r.items {
		if o.OrgID == orgID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *OrderRepo) FindOpenAsOf(_ context.Context, orgID uuid.UUID, asOf time.Time) ([]trade.Order, error) {
	var out []trade.Order
	for _, o := range r.items {
		if o.OrgID == orgID && o.IsOpen() && !o.CreatedAt.After(asOf) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *OrderRepo) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	all, _ := r.FindAllForOrg(ctx, orgID, filter)
	return int64(len(all)), nil
}

func (r *OrderRepo) Save(_ context.Context, order *trade.Order) error {
	r.items[order.ID] = order
	return nil
}

// SequentialNumbers is an in-memory trade.OrderNumberGenerator
type SequentialNumbers struct {
	Prefix string
	next   int
}

func (g *SequentialNumbers) Next(_ context.Context, _ uuid.UUID, day time.Time) (string, error) {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "ORD"
	}
	g.next++
	return trade.FormatOrderNumber(prefix, day, g.next), nil
}

// PaymentRepo is an in-memory payment repository
type PaymentRepo struct {
	items map[uuid.UUID]*paymentdomain.Payment
}

// NewPaymentRepo creates an empty payment repository
func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{items: make(map[uuid.UUID]*paymentdomain.Payment)}
}

func (r *PaymentRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*paymentdomain.Payment, error) {
	p, ok := r.items[id]
	if !ok || p.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *PaymentRepo) FindByCustomer(_ context.Context, orgID, customerID uuid.UUID, _ shared.Filter) ([]paymentdomain.Payment, error) {
	var out []paymentdomain.Payment
	for _, p := range r.items {
		if p.OrgID == orgID && p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PaymentRepo) Save(_ context.Context, payment *paymentdomain.Payment) error {
	r.items[payment.ID] = payment
	return nil
}

// DeliveryRepo is an in-memory delivery repository
type DeliveryRepo struct {
	items map[uuid.UUID]*delivery.Delivery
}

// NewDeliveryRepo creates an empty delivery repository
func NewDeliveryRepo() *DeliveryRepo {
	return &DeliveryRepo{items: make(map[uuid.UUID]*delivery.Delivery)}
}

func (r *DeliveryRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*delivery.Delivery, error) {
	d, ok := r.items[id]
	if !ok || d.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (r *DeliveryRepo) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*delivery.Delivery, error) {
	return r.FindByIDForOrg(ctx, orgID, id)
}

func (r *DeliveryRepo) FindByOrder(_ context.Context, orgID, orderID uuid.UUID) ([]delivery.Delivery, error) {
	var out []delivery.Delivery
	for _, d := range r.items {
		if d.OrgID == orgID && d.OrderID == orderID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *DeliveryRepo) FindByDeliverer(_ context.Context, orgID, delivererID uuid.UUID, date time.Time, _ shared.Filter) ([]delivery.Delivery, error) {
	day := date.Truncate(24 * time.Hour)
	var out []delivery.Delivery
	for _, d := range r.items {
		if d.OrgID == orgID && d.DelivererID == delivererID && d.ScheduledDate.Truncate(24*time.Hour).Equal(day) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *DeliveryRepo) Save(_ context.Context, d *delivery.Delivery) error {
	r.items[d.ID] = d
	return nil
}

// RegisterRepo is an in-memory cash register repository
type RegisterRepo struct {
	items       map[uuid.UUID]*delivery.DailyCashRegister
	adjustments []*delivery.RegisterAdjustment
}

// NewRegisterRepo creates an empty register repository
func NewRegisterRepo() *RegisterRepo {
	return &RegisterRepo{items: make(map[uuid.UUID]*delivery.DailyCashRegister)}
}

func (r *RegisterRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*delivery.DailyCashRegister, error) {
	reg, ok := r.items[id]
	if !ok || reg.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	return reg, nil
}

func (r *RegisterRepo) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*delivery.DailyCashRegister, error) {
	return r.FindByIDForOrg(ctx, orgID, id)
}

func (r *RegisterRepo) FindByDelivererAndDate(_ context.Context, orgID, delivererID uuid.UUID, date time.Time, _ bool) (*delivery.DailyCashRegister, error) {
	day := delivery.RegisterDay(date)
	for _, reg := range r.items {
		if reg.OrgID == orgID && reg.DelivererID == delivererID && reg.Date.Equal(day) {
			return reg, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *RegisterRepo) Save(_ context.Context, register *delivery.DailyCashRegister) error {
	r.items[register.ID] = register
	return nil
}

func (r *RegisterRepo) SaveAdjustment(_ context.Context, adjustment *delivery.RegisterAdjustment) error {
	r.adjustments = append(r.adjustments, adjustment)
	return nil
}

func (r *RegisterRepo) FindAdjustments(_ context.Context, orgID, registerID uuid.UUID) ([]delivery.RegisterAdjustment, error) {
	var out []delivery.RegisterAdjustment
	for _, a := range r.adjustments {
		if a.OrgID == orgID && a.RegisterID == registerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// IdempotencyRepo is an in-memory shared.IdempotencyRepository
type IdempotencyRepo struct {
	items map[string]*shared.IdempotencyRecord
}

// NewIdempotencyRepo creates an empty idempotency repository
func NewIdempotencyRepo() *IdempotencyRepo {
	return &IdempotencyRepo{items: make(map[string]*shared.IdempotencyRecord)}
}

func (r *IdempotencyRepo) Find(_ context.Context, orgID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	rec, ok := r.items[orgID.String()+"/"+key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rec, nil
}

func (r *IdempotencyRepo) Save(_ context.Context, record *shared.IdempotencyRecord) error {
	k := record.OrgID.String() + "/" + record.Key
	if _, ok := r.items[k]; ok {
		return shared.ErrAlreadyExists
	}
	r.items[k] = record
	return nil
}

package persistence

import (
	"context"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/distribo/backend/internal/domain/partner"
	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides repositories bound to a single
// transaction. Repositories are created lazily and cached for the
// duration of the transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB

	customerRepo partner.CustomerRepository
	debtTxRepo   partner.DebtTransactionRepository
	productRepo  catalog.ProductRepository
	orderRepo    trade.OrderRepository
	paymentRepo  paymentdomain.PaymentRepository
	deliveryRepo delivery.DeliveryRepository
	registerRepo delivery.CashRegisterRepository
	idemRepo     shared.IdempotencyRepository
}

// Customers returns the customer repository scoped to the current transaction
func (r *gormTransactionalRepositories) Customers() partner.CustomerRepository {
	if r.customerRepo == nil {
		r.customerRepo = NewGormCustomerRepository(r.tx)
	}
	return r.customerRepo
}

// DebtTransactions returns the debt audit trail repository scoped to the current transaction
func (r *gormTransactionalRepositories) DebtTransactions() partner.DebtTransactionRepository {
	if r.debtTxRepo == nil {
		r.debtTxRepo = NewGormDebtTransactionRepository(r.tx)
	}
	return r.debtTxRepo
}

// Products returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	if r.productRepo == nil {
		r.productRepo = NewGormProductRepository(r.tx)
	}
	return r.productRepo
}

// Orders returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) Orders() trade.OrderRepository {
	if r.orderRepo == nil {
		r.orderRepo = NewGormOrderRepository(r.tx)
	}
	return r.orderRepo
}

// Payments returns the payment repository scoped to the current transaction
func (r *gormTransactionalRepositories) Payments() paymentdomain.PaymentRepository {
	if r.paymentRepo == nil {
		r.paymentRepo = NewGormPaymentRepository(r.tx)
	}
	return r.paymentRepo
}

// Deliveries returns the delivery repository scoped to the current transaction
func (r *gormTransactionalRepositories) Deliveries() delivery.DeliveryRepository {
	if r.deliveryRepo == nil {
		r.deliveryRepo = NewGormDeliveryRepository(r.tx)
	}
	return r.deliveryRepo
}

// Registers returns the cash register repository scoped to the current transaction
func (r *gormTransactionalRepositories) Registers() delivery.CashRegisterRepository {
	if r.registerRepo == nil {
		r.registerRepo = NewGormCashRegisterRepository(r.tx)
	}
	return r.registerRepo
}

// Idempotency returns the idempotency record repository scoped to the current transaction
func (r *gormTransactionalRepositories) Idempotency() shared.IdempotencyRepository {
	if r.idemRepo == nil {
		r.idemRepo = NewGormIdempotencyRepository(r.tx)
	}
	return r.idemRepo
}

var _ ledger.TransactionScope = (*GormTransactionScope)(nil)
var _ ledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

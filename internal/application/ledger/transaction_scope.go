package ledger

import (
	"context"

	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/distribo/backend/internal/domain/partner"
	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or
// roll back atomically. Operations that touch a customer's debt and a
// product's stock together (order creation, cancellation, settlement)
// must run inside a single scope.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying
// transaction.
//
// Lock ordering convention for callers: when an operation locks both a
// customer and products, the customer row is locked first, then products
// in ascending id order. Every multi-aggregate writer follows this order
// so concurrent operations cannot deadlock.
type TransactionalRepositories interface {
	// Customers returns the customer repository scoped to the current transaction
	Customers() partner.CustomerRepository
	// DebtTransactions returns the debt audit trail repository scoped to the current transaction
	DebtTransactions() partner.DebtTransactionRepository
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
	// Orders returns the order repository scoped to the current transaction
	Orders() trade.OrderRepository
	// Payments returns the payment repository scoped to the current transaction
	Payments() paymentdomain.PaymentRepository
	// Deliveries returns the delivery repository scoped to the current transaction
	Deliveries() delivery.DeliveryRepository
	// Registers returns the cash register repository scoped to the current transaction
	Registers() delivery.CashRegisterRepository
	// Idempotency returns the idempotency record repository scoped to the current transaction
	Idempotency() shared.IdempotencyRepository
}

// StaticScope is a transaction scope backed by a fixed set of
// repositories, without real transactions. Useful for testing.
type StaticScope struct {
	CustomerRepo partner.CustomerRepository
	DebtTxRepo   partner.DebtTransactionRepository
	ProductRepo  catalog.ProductRepository
	OrderRepo    trade.OrderRepository
	PaymentRepo  paymentdomain.PaymentRepository
	DeliveryRepo delivery.DeliveryRepository
	RegisterRepo delivery.CashRegisterRepository
	IdemRepo     shared.IdempotencyRepository
}

// Execute runs the function directly against the fixed repositories
func (s *StaticScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Customers returns the fixed customer repository
func (s *StaticScope) Customers() partner.CustomerRepository { return s.CustomerRepo }

// DebtTransactions returns the fixed debt transaction repository
func (s *StaticScope) DebtTransactions() partner.DebtTransactionRepository { return s.DebtTxRepo }

// Products returns the fixed product repository
func (s *StaticScope) Products() catalog.ProductRepository { return s.ProductRepo }

// Orders returns the fixed order repository
func (s *StaticScope) Orders() trade.OrderRepository { return s.OrderRepo }

// Payments returns the fixed payment repository
func (s *StaticScope) Payments() paymentdomain.PaymentRepository { return s.PaymentRepo }

// Deliveries returns the fixed delivery repository
func (s *StaticScope) Deliveries() delivery.DeliveryRepository { return s.DeliveryRepo }

// Registers returns the fixed register repository
func (s *StaticScope) Registers() delivery.CashRegisterRepository { return s.RegisterRepo }

// Idempotency returns the fixed idempotency repository
func (s *StaticScope) Idempotency() shared.IdempotencyRepository { return s.IdemRepo }

var _ TransactionScope = (*StaticScope)(nil)
var _ TransactionalRepositories = (*StaticScope)(nil)

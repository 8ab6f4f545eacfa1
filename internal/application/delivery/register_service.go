package delivery

import (
	"context"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RegisterService reconciles deliverers' daily cash registers. A
// register is opened lazily by the first settlement of the day and
// closed exactly once; corrections after close are adjustment entries.
type RegisterService struct {
	scope          ledger.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewRegisterService creates a new RegisterService
func NewRegisterService(scope ledger.TransactionScope) *RegisterService {
	return &RegisterService{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *RegisterService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Close closes a register, freezing its totals and recording the cash
// handed over. Closing twice fails.
func (s *RegisterService) Close(ctx context.Context, orgID, registerID uuid.UUID, req CloseRegisterRequest) (*RegisterResponse, error) {
	var register *delivery.DailyCashRegister
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var err error
		register, err = repos.Registers().FindByIDForUpdate(ctx, orgID, registerID)
		if err != nil {
			return err
		}
		if err := register.Close(req.CashHandedOver, req.ClosedBy, req.Notes); err != nil {
			return err
		}
		return repos.Registers().Save(ctx, register)
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, register.GetDomainEvents()...)
		register.ClearDomainEvents()
	}

	response := ToRegisterResponse(register, nil)
	return &response, nil
}

// AddAdjustment records a signed correction against a closed register.
// The register's frozen totals are never edited.
func (s *RegisterService) AddAdjustment(ctx context.Context, orgID, registerID uuid.UUID, req RegisterAdjustmentRequest) (*RegisterResponse, error) {
	var response RegisterResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		register, err := repos.Registers().FindByIDForOrg(ctx, orgID, registerID)
		if err != nil {
			return err
		}
		adjustment, err := delivery.NewRegisterAdjustment(register, req.Amount, req.Reason, req.CreatedBy)
		if err != nil {
			return err
		}
		if err := repos.Registers().SaveAdjustment(ctx, adjustment); err != nil {
			return err
		}
		adjustments, err := repos.Registers().FindAdjustments(ctx, orgID, registerID)
		if err != nil {
			return err
		}
		response = ToRegisterResponse(register, adjustments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByID retrieves a register with its adjustments
func (s *RegisterService) GetByID(ctx context.Context, orgID, registerID uuid.UUID) (*RegisterResponse, error) {
	var response RegisterResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		register, err := repos.Registers().FindByIDForOrg(ctx, orgID, registerID)
		if err != nil {
			return err
		}
		adjustments, err := repos.Registers().FindAdjustments(ctx, orgID, registerID)
		if err != nil {
			return err
		}
		response = ToRegisterResponse(register, adjustments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetForDeliverer retrieves a deliverer's register for a given day
func (s *RegisterService) GetForDeliverer(ctx context.Context, orgID, delivererID uuid.UUID, date time.Time) (*RegisterResponse, error) {
	var response RegisterResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		register, err := repos.Registers().FindByDelivererAndDate(ctx, orgID, delivererID, date, false)
		if err != nil {
			return err
		}
		adjustments, err := repos.Registers().FindAdjustments(ctx, orgID, register.ID)
		if err != nil {
			return err
		}
		response = ToRegisterResponse(register, adjustments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

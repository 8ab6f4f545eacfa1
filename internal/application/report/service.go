package report

import (
	"context"
	"sort"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementService produces the read-side projections of the debt
// ledger: per-customer statements and the receivables aging report.
// Everything here is derived from stored records; nothing is mutated.
type StatementService struct {
	scope ledger.TransactionScope
}

// NewStatementService creates a new StatementService
func NewStatementService(scope ledger.TransactionScope) *StatementService {
	return &StatementService{scope: scope}
}

// CustomerStatement projects a customer's debt movements in a date
// range with a running balance. The opening balance is the debt
// snapshot before the first movement in range; with no movements the
// statement carries the customer's current balance unchanged.
func (s *StatementService) CustomerStatement(ctx context.Context, orgID, customerID uuid.UUID, from, to time.Time) (*CustomerStatementResponse, error) {
	var response CustomerStatementResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForOrg(ctx, orgID, customerID)
		if err != nil {
			return err
		}
		movements, err := repos.DebtTransactions().FindByCustomer(ctx, orgID, customerID, from, to)
		if err != nil {
			return err
		}

		response = CustomerStatementResponse{
			CustomerID:   customer.ID,
			CustomerCode: customer.Code,
			CustomerName: customer.Name,
			From:         from,
			To:           to,
			Lines:        make([]StatementLine, 0, len(movements)),
		}
		if len(movements) == 0 {
			response.OpeningBalance = customer.CurrentDebt
			response.ClosingBalance = customer.CurrentDebt
			return nil
		}

		response.OpeningBalance = movements[0].DebtBefore
		for _, m := range movements {
			response.Lines = append(response.Lines, StatementLine{
				Date:           m.TransactionDate,
				Type:           m.TransactionType.String(),
				SourceType:     string(m.SourceType),
				Reference:      m.Reference,
				Remark:         m.Remark,
				Amount:         m.Delta(),
				RunningBalance: m.DebtAfter,
			})
		}
		response.ClosingBalance = movements[len(movements)-1].DebtAfter
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// AgingReport buckets every open order's unpaid remainder by order age
// as of the given date: 0-30, 31-60, 61-90 and over 90 days, per
// customer, plus a totals row.
func (s *StatementService) AgingReport(ctx context.Context, orgID uuid.UUID, asOf time.Time) (*AgingReportResponse, error) {
	var response AgingReportResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		orders, err := repos.Orders().FindOpenAsOf(ctx, orgID, asOf)
		if err != nil {
			return err
		}

		rows := make(map[uuid.UUID]*AgingRow)
		for i := range orders {
			order := &orders[i]
			row, ok := rows[order.CustomerID]
			if !ok {
				row = &AgingRow{
					CustomerID:   order.CustomerID,
					CustomerName: order.CustomerName,
					Current:      decimal.Zero,
					Days31to60:   decimal.Zero,
					Days61to90:   decimal.Zero,
					Over90:       decimal.Zero,
					Total:        decimal.Zero,
				}
				rows[order.CustomerID] = row
			}

			due := order.AmountDue()
			age := int(asOf.Sub(order.CreatedAt).Hours() / 24)
			switch {
			case age <= 30:
				row.Current = row.Current.Add(due)
			case age <= 60:
				row.Days31to60 = row.Days31to60.Add(due)
			case age <= 90:
				row.Days61to90 = row.Days61to90.Add(due)
			default:
				row.Over90 = row.Over90.Add(due)
			}
			row.Total = row.Total.Add(due)
		}

		response = AgingReportResponse{
			AsOf: asOf,
			Rows: make([]AgingRow, 0, len(rows)),
			Totals: AgingRow{
				Current:    decimal.Zero,
				Days31to60: decimal.Zero,
				Days61to90: decimal.Zero,
				Over90:     decimal.Zero,
				Total:      decimal.Zero,
			},
		}
		for _, row := range rows {
			response.Rows = append(response.Rows, *row)
			response.Totals.Current = response.Totals.Current.Add(row.Current)
			response.Totals.Days31to60 = response.Totals.Days31to60.Add(row.Days31to60)
			response.Totals.Days61to90 = response.Totals.Days61to90.Add(row.Days61to90)
			response.Totals.Over90 = response.Totals.Over90.Add(row.Over90)
			response.Totals.Total = response.Totals.Total.Add(row.Total)
		}
		sort.Slice(response.Rows, func(i, j int) bool {
			return response.Rows[i].CustomerName < response.Rows[j].CustomerName
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

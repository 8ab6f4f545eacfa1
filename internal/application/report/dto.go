package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementLine is one debt movement on a customer statement
type StatementLine struct {
	Date           time.Time       `json:"date"`
	Type           string          `json:"type"`
	SourceType     string          `json:"source_type"`
	Reference      string          `json:"reference,omitempty"`
	Remark         string          `json:"remark,omitempty"`
	Amount         decimal.Decimal `json:"amount"` // signed movement
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// CustomerStatementResponse is the date-ranged debt statement for one customer
type CustomerStatementResponse struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerCode   string          `json:"customer_code"`
	CustomerName   string          `json:"customer_name"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Lines          []StatementLine `json:"lines"`
}

// AgingRow buckets one customer's open order debt by order age
type AgingRow struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Current      decimal.Decimal `json:"current"`       // 0-30 days
	Days31to60   decimal.Decimal `json:"days_31_to_60"`
	Days61to90   decimal.Decimal `json:"days_61_to_90"`
	Over90       decimal.Decimal `json:"over_90"`
	Total        decimal.Decimal `json:"total"`
}

// AgingReportResponse buckets every customer's open order debt by age
type AgingReportResponse struct {
	AsOf   time.Time       `json:"as_of"`
	Rows   []AgingRow      `json:"rows"`
	Totals AgingRow        `json:"totals"`
}

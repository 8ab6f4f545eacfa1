package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder(" ASC "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("ASC; DROP TABLE customers"))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "code", ValidateSortField("code", CustomerSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", CustomerSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password", CustomerSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("code; DELETE FROM orders", OrderSortFields, "created_at"))
	assert.Equal(t, "current_stock", ValidateSortField(" current_stock ", ProductSortFields, "created_at"))
}

package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusRefundRequested, StatusRefunded, StatusCancelled,
	} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("PENDING"), "enum case-sensitive")
	assert.False(t, ValidStatus("returned"))
}

func TestRefundGates(t *testing.T) {
	assert.True(t, CanRequestRefund(StatusDelivered))
	assert.False(t, CanRequestRefund(StatusShipped))
	assert.False(t, CanRequestRefund(StatusRefundRequested), "request kedua harus kalah")

	assert.True(t, CanProcessRefund(StatusRefundRequested))
	assert.False(t, CanProcessRefund(StatusDelivered))
	assert.False(t, CanProcessRefund(StatusRefunded), "refund tidak bisa diproses dua kali")
}

package report

import (
	"bytes"
	"testing"
	"time"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWritePayments(t *testing.T) {
	approvedAt := time.Date(2024, time.January, 6, 9, 30, 0, 0, time.UTC)
	payments := []model.Payment{
		{
			ReceiptID:   "r-1",
			RequestedBy: uuid.New(),
			Requester:   &model.User{Username: "tina"},
			Reason:      "TR-001",
			ServiceDays: 4,
			Amount:      decimal.NewFromInt(2000),
			Status:      model.PaymentApproved,
			Approver:    &model.User{Username: "sam"},
			ApprovedAt:  &approvedAt,
			CreatedAt:   time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC),
		},
		{
			ReceiptID:   "r-2",
			RequestedBy: uuid.New(),
			Reason:      "TR-002",
			ServiceDays: 1,
			Amount:      decimal.NewFromInt(500),
			Status:      model.PaymentPending,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePayments(&buf, payments))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(paymentSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, paymentHeaders, rows[0])
	assert.Equal(t, "r-1", rows[1][0])
	assert.Equal(t, "tina", rows[1][1])
	assert.Equal(t, "TR-001", rows[1][2])
	assert.Equal(t, "approved", rows[1][5])
	assert.Equal(t, "sam", rows[1][6])
	assert.Equal(t, payments[1].RequestedBy.String(), rows[2][1])

	formula, err := f.GetCellFormula(paymentSheet, "E4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(E2:E3)", formula)
}

func TestWritePaymentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePayments(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(paymentSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "total", rows[1][3])
}

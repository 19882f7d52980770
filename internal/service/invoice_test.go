package service

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
)

func TestInvoiceVAT(t *testing.T) {
	subtotal := 100.0
	assert.Equal(t, 120.0, subtotal+subtotal*vatRate, "grand total is subtotal plus 20% VAT")
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-000042", InvoiceNumber(42))
	assert.Equal(t, "INV-000001", InvoiceNumber(1))
	assert.Equal(t, "INV-1234567", InvoiceNumber(1234567))
}

func TestInvoiceGenerate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	svc := NewInvoiceService(repository.NewRentalRepo(db))

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(42)).
		WillReturnRows(detailRow(42, 3, 7, start, end, 100, model.RentalCompleted))

	var buf bytes.Buffer
	require.NoError(t, svc.Generate(context.Background(), 42, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output should be a PDF document")
	assert.Greater(t, buf.Len(), 500)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceGenerate_RentalNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	svc := NewInvoiceService(repository.NewRentalRepo(db))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(999)).
		WillReturnRows(sqlmock.NewRows(detailColumns))

	var buf bytes.Buffer
	err = svc.Generate(context.Background(), 999, &buf)
	assert.ErrorIs(t, err, repository.ErrRentalNotFound)
	assert.Zero(t, buf.Len())
}

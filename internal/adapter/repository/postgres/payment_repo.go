package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/postgres/generated"
	"github.com/iho/saccopay/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	queries *generated.Queries
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db generated.DBTX) *PaymentRepository {
	return &PaymentRepository{queries: generated.New(db)}
}

// Create inserts a pending payment within a transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	err := queriesIn(tx).CreatePayment(ctx, generated.CreatePaymentParams{
		ID:                payment.ID,
		UserID:            payment.UserID,
		LoanID:            payment.LoanID,
		Amount:            decimalToNumeric(payment.Amount),
		Phone:             payment.Phone,
		CheckoutRequestID: stringPtrToText(payment.CheckoutRequestID),
		Status:            string(payment.Status),
		CreatedAt:         timeToPgTimestamptz(payment.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(payment.UpdatedAt),
	})

	return domain.Persistence("create payment", err)
}

// GetByCheckoutRequestID retrieves a payment by the provider's correlation id.
func (r *PaymentRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error) {
	row, err := r.queries.GetPaymentByCheckoutRequestID(ctx, pgtype.Text{String: checkoutRequestID, Valid: true})
	if err != nil {
		return nil, paymentError("get payment", err)
	}

	return rowToPayment(row), nil
}

// GetByCheckoutRequestIDForUpdate retrieves and locks a payment for the rest of tx.
func (r *PaymentRepository) GetByCheckoutRequestIDForUpdate(ctx context.Context, tx usecase.Transaction, checkoutRequestID string) (*domain.Payment, error) {
	row, err := queriesIn(tx).GetPaymentByCheckoutRequestIDForUpdate(ctx, pgtype.Text{String: checkoutRequestID, Valid: true})
	if err != nil {
		return nil, paymentError("lock payment", err)
	}

	return rowToPayment(row), nil
}

// Settle writes the terminal outcome only while the payment is still pending.
func (r *PaymentRepository) Settle(ctx context.Context, tx usecase.Transaction, id string, settlement domain.Settlement) (bool, error) {
	affected, err := queriesIn(tx).SettlePayment(ctx, generated.SettlePaymentParams{
		ID:             id,
		Status:         string(settlement.Status),
		AmountReceived: decimalPtrToNumeric(settlement.AmountReceived),
		MpesaReceipt:   stringPtrToText(settlement.MpesaReceipt),
		ResultCode:     pgtype.Int4{Int32: int32(settlement.ResultCode), Valid: true},
		ResultDesc:     pgtype.Text{String: settlement.ResultDesc, Valid: true},
		Phone:          stringPtrToText(settlement.Phone),
		UpdatedAt:      timeToPgTimestamptz(settlement.SettledAt),
	})
	if err != nil {
		return false, domain.Persistence("settle payment", err)
	}

	return affected == 1, nil
}

func paymentError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrPaymentNotFound
	}
	return domain.Persistence(op, err)
}

func rowToPayment(row generated.Payment) *domain.Payment {
	return &domain.Payment{
		ID:                row.ID,
		UserID:            row.UserID,
		LoanID:            row.LoanID,
		Amount:            numericToDecimal(row.Amount),
		Phone:             row.Phone,
		CheckoutRequestID: textToStringPtr(row.CheckoutRequestID),
		Status:            domain.PaymentStatus(row.Status),
		AmountReceived:    numericToDecimalPtr(row.AmountReceived),
		MpesaReceipt:      textToStringPtr(row.MpesaReceipt),
		ResultCode:        int4ToIntPtr(row.ResultCode),
		ResultDesc:        textToStringPtr(row.ResultDesc),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}

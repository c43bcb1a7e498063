package repository

import (
	"context"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository exposes the derived credit balance for read-only callers.
// Admission decisions never use these reads; they run the same queries inside
// the enrollment transaction instead.
type LedgerRepository interface {
	// GetBalance returns purchased-minus-used credits for a user. Used counts
	// every non-cancelled booking, so a credit is reserved at booking time
	// and released on cancellation.
	GetBalance(ctx context.Context, userID string) (*model.CreditBalance, error)
}

type ledgerRepo struct {
	pool *pgxpool.Pool
}

// NewLedgerRepo creates a new LedgerRepository.
func NewLedgerRepo(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepo{pool: pool}
}

const balanceQ = `
	SELECT
		COALESCE((SELECT SUM(purchased_credits) FROM credit_purchases WHERE user_id = $1), 0) AS purchased,
		(SELECT COUNT(*) FROM course_bookings WHERE user_id = $1 AND cancelled_at IS NULL) AS used
`

func (r *ledgerRepo) GetBalance(ctx context.Context, userID string) (*model.CreditBalance, error) {
	var purchased, used int
	if err := r.pool.QueryRow(ctx, balanceQ, userID).Scan(&purchased, &used); err != nil {
		return nil, fmt.Errorf("fetching credit balance for user %s: %w", userID, err)
	}
	return &model.CreditBalance{Remaining: purchased - used, Used: used}, nil
}

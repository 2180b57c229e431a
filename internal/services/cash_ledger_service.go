package services

import (
	"context"
	"errors"

	"distro-backend/internal/apperrors"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
	"distro-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CashLedgerService drives the daily ledger lifecycle:
// open -> closed -> remitted -> confirmed. Settlements create and fill
// ledgers through SettlementService; everything here is the end-of-day
// reconciliation flow.
type CashLedgerService struct {
	DB          *pgxpool.Pool
	Ledgers     *repositories.CashLedgerRepository
	Remittances *repositories.RemittanceRepository
}

func NewCashLedgerService(db *pgxpool.Pool, ledgers *repositories.CashLedgerRepository, remittances *repositories.RemittanceRepository) *CashLedgerService {
	return &CashLedgerService{DB: db, Ledgers: ledgers, Remittances: remittances}
}

// Open creates today's ledger explicitly, e.g. when an agent starts the
// day with a cash float. A second open for the same day is a conflict.
func (s *CashLedgerService) Open(ctx context.Context, agentID int, req *models.OpenLedgerRequest) (*models.DailyCashLedger, error) {
	date := req.LedgerDate
	if date == "" {
		date = timeutil.BusinessDate(timeutil.Now())
	}
	if req.OpeningBalance < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidAmount, "opening balance must not be negative")
	}

	ledger, err := s.Ledgers.Open(ctx, agentID, date, req.OpeningBalance)
	if err != nil {
		if errors.Is(err, repositories.ErrLedgerExists) {
			return nil, apperrors.Newf(apperrors.CodeLedgerConflict, "ledger for %s already open", date)
		}
		return nil, wrapStore(err)
	}
	return ledger, nil
}

// Close records what the agent physically hands over and computes the
// variance against what the ledger says they collected, net of expenses.
func (s *CashLedgerService) Close(ctx context.Context, ledgerID, callerID int, req *models.CloseLedgerRequest) (*models.DailyCashLedger, error) {
	if req.DeclaredCash < 0 || req.DeclaredChecks < 0 || req.Expenses < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidAmount, "declared amounts must not be negative")
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		ledger, err := s.Ledgers.GetForUpdate(ctx, tx, ledgerID)
		if err != nil {
			return notFoundOr(err, "ledger %d not found", ledgerID)
		}
		if ledger.AgentID != callerID {
			return apperrors.Newf(apperrors.CodeForbidden, "ledger %d belongs to another agent", ledgerID)
		}
		if !canTransitionLedger(ledger.Status, models.LedgerClosed) {
			return apperrors.Newf(apperrors.CodeInvalidLedgerState, "ledger %d is %s, not open", ledgerID, ledger.Status)
		}

		variance := closeVariance(req.DeclaredCash, req.DeclaredChecks, req.Expenses, ledger.ActualCollection)
		if err := s.Ledgers.Close(ctx, tx, ledgerID, req.DeclaredCash, req.DeclaredChecks, req.Expenses, variance); err != nil {
			return wrapStore(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Ledgers.Get(ctx, ledgerID)
}

// Remit hands the closed ledger's declared funds to an administrator as
// a pending CashRemittance.
func (s *CashLedgerService) Remit(ctx context.Context, ledgerID, callerID int) (*models.CashRemittance, error) {
	var remittance *models.CashRemittance

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		ledger, err := s.Ledgers.GetForUpdate(ctx, tx, ledgerID)
		if err != nil {
			return notFoundOr(err, "ledger %d not found", ledgerID)
		}
		if ledger.AgentID != callerID {
			return apperrors.Newf(apperrors.CodeForbidden, "ledger %d belongs to another agent", ledgerID)
		}
		if !canTransitionLedger(ledger.Status, models.LedgerRemitted) {
			return apperrors.Newf(apperrors.CodeInvalidLedgerState, "ledger %d is %s, not closed", ledgerID, ledger.Status)
		}

		remittance = &models.CashRemittance{
			LedgerID: ledger.ID,
			AgentID:  ledger.AgentID,
			Amount:   ledger.DeclaredCash + ledger.DeclaredChecks,
		}
		if err := s.Remittances.Insert(ctx, tx, remittance); err != nil {
			return wrapStore(err)
		}
		if err := s.Ledgers.SetStatus(ctx, tx, ledger.ID, models.LedgerClosed, models.LedgerRemitted); err != nil {
			return wrapStore(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return remittance, nil
}

// Confirm is the administrator accepting the cash. The remittance and
// its ledger move to their final states together.
func (s *CashLedgerService) Confirm(ctx context.Context, remittanceID, adminID int) (*models.CashRemittance, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		remittance, err := s.Remittances.GetForUpdate(ctx, tx, remittanceID)
		if err != nil {
			return notFoundOr(err, "remittance %d not found", remittanceID)
		}
		if remittance.Status != models.RemittancePending {
			return apperrors.Newf(apperrors.CodeInvalidLedgerState, "remittance %d is %s, not pending", remittanceID, remittance.Status)
		}

		if err := s.Remittances.Confirm(ctx, tx, remittanceID, adminID); err != nil {
			return wrapStore(err)
		}
		if err := s.Ledgers.SetStatus(ctx, tx, remittance.LedgerID, models.LedgerRemitted, models.LedgerConfirmed); err != nil {
			return wrapStore(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Remittances.Get(ctx, remittanceID)
}

func (s *CashLedgerService) GetForAgent(ctx context.Context, agentID int, date string) (*models.DailyCashLedger, error) {
	if date == "" {
		date = timeutil.BusinessDate(timeutil.Now())
	}
	ledger, err := s.Ledgers.GetByAgentAndDate(ctx, agentID, date)
	if err != nil {
		return nil, notFoundOr(err, "no ledger for agent %d on %s", agentID, date)
	}
	return ledger, nil
}

func (s *CashLedgerService) ListByDate(ctx context.Context, date string) ([]models.DailyCashLedger, error) {
	if date == "" {
		date = timeutil.BusinessDate(timeutil.Now())
	}
	return s.Ledgers.ListByDate(ctx, date)
}

func (s *CashLedgerService) ListPendingRemittances(ctx context.Context) ([]models.CashRemittance, error) {
	return s.Remittances.ListPending(ctx)
}

func (s *CashLedgerService) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return wrapStore(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStore(err)
	}
	return nil
}

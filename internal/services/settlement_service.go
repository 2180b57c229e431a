package services

import (
	"context"
	"errors"
	"log"
	"time"

	"distro-backend/internal/apperrors"
	"distro-backend/internal/events"
	"distro-backend/internal/metrics"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
	"distro-backend/internal/settlement"
	"distro-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlertSink receives advisory credit alerts after commit. The monitoring
// server implements it to push alerts to connected dashboards.
type AlertSink interface {
	NotifyCreditAlert(alert models.CreditAlert)
}

// SettlementService is the only entry point set that moves money. Each
// operation runs as one transaction over the delivery, order, customer,
// payment-record and daily-cash-ledger rows; events and alerts leave the
// service only after that transaction commits.
type SettlementService struct {
	DB          *pgxpool.Pool
	Customers   *repositories.CustomerRepository
	Orders      *repositories.OrderRepository
	Deliveries  *repositories.DeliveryRepository
	Payments    *repositories.PaymentRecordRepository
	CashLedgers *repositories.CashLedgerRepository
	Alerts      *repositories.CreditAlertRepository
	Publisher   *events.Publisher
	AlertSink   AlertSink

	maxAttempts int
	txTimeout   time.Duration
}

func NewSettlementService(
	db *pgxpool.Pool,
	customers *repositories.CustomerRepository,
	orders *repositories.OrderRepository,
	deliveries *repositories.DeliveryRepository,
	payments *repositories.PaymentRecordRepository,
	cashLedgers *repositories.CashLedgerRepository,
	alerts *repositories.CreditAlertRepository,
	publisher *events.Publisher,
) *SettlementService {
	return &SettlementService{
		DB:          db,
		Customers:   customers,
		Orders:      orders,
		Deliveries:  deliveries,
		Payments:    payments,
		CashLedgers: cashLedgers,
		Alerts:      alerts,
		Publisher:   publisher,
		maxAttempts: 3,
		txTimeout:   10 * time.Second,
	}
}

// CompleteDelivery settles a delivered order: allocates the collected
// amount across the order and prior debt, marks the delivery terminal,
// and folds the cash into the agent's daily ledger.
func (s *SettlementService) CompleteDelivery(ctx context.Context, deliveryID, callerID int, req *models.CompleteDeliveryRequest) (*models.SettlementResult, error) {
	if err := settlement.ValidateAmount(req.CollectedAmount); err != nil {
		metrics.SettlementsTotal.WithLabelValues("complete_delivery", string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = models.CollectCash
	}

	var result *models.SettlementResult
	var plan *settlement.Plan
	var agentID int

	err := s.withRetry(ctx, "complete_delivery", func(ctx context.Context, tx pgx.Tx) error {
		delivery, err := s.Deliveries.GetForUpdate(ctx, tx, deliveryID)
		if err != nil {
			return notFoundOr(err, "delivery %d not found", deliveryID)
		}
		if err := settlement.CheckDeliverySettleable(delivery, callerID); err != nil {
			return err
		}

		order, err := s.Orders.GetForUpdate(ctx, tx, delivery.OrderID)
		if err != nil {
			return notFoundOr(err, "order %d not found", delivery.OrderID)
		}
		customer, err := s.Customers.GetForUpdate(ctx, tx, order.CustomerID)
		if err != nil {
			return notFoundOr(err, "customer %d not found", order.CustomerID)
		}
		unpaid, err := s.Orders.LockUnpaidByCustomer(ctx, tx, customer.ID, order.ID)
		if err != nil {
			return wrapStore(err)
		}

		plan, err = settlement.PlanCompleteDelivery(delivery, order, customer, unpaid, req.CollectedAmount)
		if err != nil {
			return err
		}

		if err := s.Deliveries.MarkDelivered(ctx, tx, delivery.ID, req.CollectedAmount, mode, req.ProofKey); err != nil {
			return wrapStore(err)
		}
		if err := s.Orders.SetStatus(ctx, tx, order.ID, models.OrderFulfilled); err != nil {
			return wrapStore(err)
		}
		record, err := s.applyPlan(ctx, tx, plan, customer, delivery.DelivererID, mode, &order.ID, &delivery.ID)
		if err != nil {
			return err
		}

		agentID = delivery.DelivererID
		orderID := order.ID
		result = &models.SettlementResult{
			PaymentRecordID:  record.ID,
			CustomerID:       customer.ID,
			DeliveryID:       &deliveryID,
			OrderID:          &orderID,
			Amount:           req.CollectedAmount,
			Allocation:       plan.Allocation,
			DebtBefore:       plan.DebtBefore,
			DebtAfter:        plan.DebtAfter,
			FifoApplications: plan.FifoApplications,
			PaymentStatus:    plan.OrderUpdate.NewStatus,
		}
		return nil
	})
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("complete_delivery", string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	metrics.SettlementsTotal.WithLabelValues("complete_delivery", "OK").Inc()
	metrics.SettlementAmount.WithLabelValues("order").Add(plan.Allocation.AppliedToOrder)
	metrics.SettlementAmount.WithLabelValues("debt").Add(plan.Allocation.AppliedToDebt)

	now := timeutil.Now()
	evts := []events.Event{
		events.DeliveryCompleted(result, agentID, now),
		events.PaymentReceived(result, agentID, now),
	}
	s.afterCommit(ctx, plan.Alert, &evts, now)
	s.Publisher.PublishAsync(evts)
	return result, nil
}

// FailDelivery records a failed attempt. No money moves; the order goes
// back to the assignable pool and the day's failure counter ticks up.
func (s *SettlementService) FailDelivery(ctx context.Context, deliveryID, callerID int, reason string) (*models.Delivery, error) {
	var failed *models.Delivery
	var agentID, orderID int

	err := s.withRetry(ctx, "fail_delivery", func(ctx context.Context, tx pgx.Tx) error {
		delivery, err := s.Deliveries.GetForUpdate(ctx, tx, deliveryID)
		if err != nil {
			return notFoundOr(err, "delivery %d not found", deliveryID)
		}
		if err := settlement.CheckDeliverySettleable(delivery, callerID); err != nil {
			return err
		}

		if err := s.Deliveries.MarkFailed(ctx, tx, delivery.ID, reason); err != nil {
			return wrapStore(err)
		}
		if err := s.Orders.SetStatus(ctx, tx, delivery.OrderID, models.OrderReassignable); err != nil {
			return wrapStore(err)
		}

		date := timeutil.BusinessDate(timeutil.Now())
		if err := s.CashLedgers.EnsureOpen(ctx, tx, delivery.DelivererID, date); err != nil {
			return wrapStore(err)
		}
		if err := s.CashLedgers.ApplyDelta(ctx, tx, delivery.DelivererID, date, settlement.PlanFailDelivery().LedgerDelta); err != nil {
			return ledgerOr(err)
		}

		agentID, orderID = delivery.DelivererID, delivery.OrderID
		return nil
	})
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("fail_delivery", string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}
	metrics.SettlementsTotal.WithLabelValues("fail_delivery", "OK").Inc()

	failed, err = s.Deliveries.Get(ctx, deliveryID)
	if err != nil {
		return nil, wrapStore(err)
	}
	s.Publisher.PublishAsync([]events.Event{
		events.DeliveryFailed(deliveryID, orderID, agentID, reason, timeutil.Now()),
	})
	return failed, nil
}

// CollectDebt is the standalone path with no delivery attached. Unlike a
// delivery settlement there is nothing for excess cash to mean, so
// collecting more than the standing debt is a hard reject.
func (s *SettlementService) CollectDebt(ctx context.Context, customerID, callerID int, amount float64, mode models.CollectionMode) (*models.SettlementResult, error) {
	if mode == "" {
		mode = models.CollectCash
	}

	var result *models.SettlementResult
	var plan *settlement.Plan

	err := s.withRetry(ctx, "collect_debt", func(ctx context.Context, tx pgx.Tx) error {
		customer, err := s.Customers.GetForUpdate(ctx, tx, customerID)
		if err != nil {
			return notFoundOr(err, "customer %d not found", customerID)
		}
		unpaid, err := s.Orders.LockUnpaidByCustomer(ctx, tx, customer.ID, 0)
		if err != nil {
			return wrapStore(err)
		}

		plan, err = settlement.PlanCollectDebt(customer, unpaid, amount)
		if err != nil {
			return err
		}

		record, err := s.applyPlan(ctx, tx, plan, customer, callerID, mode, nil, nil)
		if err != nil {
			return err
		}

		result = &models.SettlementResult{
			PaymentRecordID:  record.ID,
			CustomerID:       customer.ID,
			Amount:           amount,
			Allocation:       plan.Allocation,
			DebtBefore:       plan.DebtBefore,
			DebtAfter:        plan.DebtAfter,
			FifoApplications: plan.FifoApplications,
		}
		return nil
	})
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("collect_debt", string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	metrics.SettlementsTotal.WithLabelValues("collect_debt", "OK").Inc()
	metrics.SettlementAmount.WithLabelValues("debt").Add(amount)
	s.Publisher.PublishAsync([]events.Event{
		events.PaymentReceived(result, callerID, timeutil.Now()),
	})
	return result, nil
}

// applyPlan writes the shared tail of every money-moving plan: FIFO
// applications, the customer's new debt, the ledger increments, and the
// immutable payment record.
func (s *SettlementService) applyPlan(ctx context.Context, tx pgx.Tx, plan *settlement.Plan, customer *models.Customer, agentID int, mode models.CollectionMode, orderID, deliveryID *int) (*models.PaymentRecord, error) {
	if plan.OrderUpdate != nil {
		if err := s.Orders.ApplyPayment(ctx, tx, *plan.OrderUpdate); err != nil {
			return nil, wrapStore(err)
		}
	}
	for _, u := range plan.FifoUpdates {
		if err := s.Orders.ApplyPayment(ctx, tx, u); err != nil {
			return nil, wrapStore(err)
		}
	}
	if err := s.Customers.SetDebt(ctx, tx, customer.ID, plan.DebtAfter, customer.Version); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransactionConflict, "customer debt changed concurrently", err)
	}

	date := timeutil.BusinessDate(timeutil.Now())
	if err := s.CashLedgers.EnsureOpen(ctx, tx, agentID, date); err != nil {
		return nil, wrapStore(err)
	}
	if err := s.CashLedgers.ApplyDelta(ctx, tx, agentID, date, plan.LedgerDelta); err != nil {
		return nil, ledgerOr(err)
	}

	record := &models.PaymentRecord{
		CustomerID:       customer.ID,
		OrderID:          orderID,
		DeliveryID:       deliveryID,
		Amount:           plan.LedgerDelta.ActualCollection,
		Mode:             mode,
		DebtBefore:       plan.DebtBefore,
		DebtAfter:        plan.DebtAfter,
		AppliedToOrder:   plan.Allocation.AppliedToOrder,
		AppliedToDebt:    plan.Allocation.AppliedToDebt,
		NewDebtCreated:   plan.Allocation.NewDebtCreated,
		FifoApplications: plan.FifoApplications,
		CollectedByID:    agentID,
	}
	if err := s.Payments.Insert(ctx, tx, record); err != nil {
		return nil, wrapStore(err)
	}
	return record, nil
}

// afterCommit persists and fans out the advisory credit alert. Failures
// here are logged and swallowed: the settlement is already committed.
func (s *SettlementService) afterCommit(ctx context.Context, alert *models.CreditAlert, evts *[]events.Event, now time.Time) {
	if alert == nil {
		return
	}
	metrics.CreditAlertsTotal.Inc()
	if err := s.Alerts.Insert(ctx, alert); err != nil {
		log.Printf("[Settlement] credit alert for customer %d not persisted: %v", alert.CustomerID, err)
	}
	if s.AlertSink != nil {
		s.AlertSink.NotifyCreditAlert(*alert)
	}
	*evts = append(*evts, events.CreditLimitExceeded(alert, now))
}

// withRetry runs fn in a transaction, retrying on lock/serialization
// conflicts. Each attempt gets its own bounded context so a stuck lock
// aborts cleanly instead of hanging the agent's request.
func (s *SettlementService) withRetry(ctx context.Context, operation string, fn func(context.Context, pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err

		var ae *apperrors.Error
		if errors.As(err, &ae) && ae.Code != apperrors.CodeTransactionConflict {
			return err
		}
		if !retriableTxError(err) && apperrors.CodeOf(err) != apperrors.CodeTransactionConflict {
			return wrapStore(err)
		}

		metrics.SettlementRetries.Inc()
		log.Printf("[Settlement] %s conflict, attempt %d/%d: %v", operation, attempt, s.maxAttempts, err)
	}
	return apperrors.Wrap(apperrors.CodeTransactionConflict, "settlement aborted after repeated conflicts", lastErr)
}

func (s *SettlementService) runTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return wrapStore(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStore(err)
	}
	return nil
}

func retriableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected, lock_not_available
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.Newf(apperrors.CodeNotFound, format, args...)
	}
	return wrapStore(err)
}

func ledgerOr(err error) error {
	if errors.Is(err, repositories.ErrLedgerNotOpen) {
		return apperrors.Wrap(apperrors.CodeInvalidLedgerState, "daily cash ledger is closed for today", err)
	}
	return wrapStore(err)
}

func wrapStore(err error) error {
	if retriableTxError(err) {
		return apperrors.Wrap(apperrors.CodeTransactionConflict, "transaction conflict", err)
	}
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperrors.Wrap(apperrors.CodePersistenceFailure, "store operation failed", err)
}

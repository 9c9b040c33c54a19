package service

import (
	"context"
	"fmt"
	"time"

	"cashier/models"
	log "github.com/sirupsen/logrus"
)

type reportingService struct {
	uowFactory UnitOfWorkFactory
	cache      *ReportCache
}

// NewReportingService creates a new reporting service. The cache may be
// nil, in which case every call aggregates directly.
func NewReportingService(uowFactory UnitOfWorkFactory, cache *ReportCache) ReportingService {
	return &reportingService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

// DashboardReport builds the admin dashboard aggregates. Today-window
// filters use the caller-supplied now. Each aggregate that fails to fetch
// is logged and degrades to its zero value; the report as a whole is
// always returned.
func (s *reportingService) DashboardReport(ctx context.Context, now time.Time) (*models.DashboardReport, error) {
	if report, ok := s.cache.Get(ctx, now); ok {
		return report, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // Read-only

	report := &models.DashboardReport{GeneratedAt: now}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	accounts, balance, deposited, withdrawn, err := uow.AccountRepository().Aggregate(ctx)
	if err != nil {
		log.WithError(err).Warn("Account aggregate failed, defaulting to zero")
	} else {
		report.TotalAccounts = accounts
		report.TotalBalance = balance
		report.TotalDeposited = deposited
		report.TotalWithdrawn = withdrawn
	}

	if agg, err := uow.RequestRepository().AggregatePending(ctx, models.RequestKindDeposit); err != nil {
		log.WithError(err).Warn("Pending deposit aggregate failed, defaulting to zero")
	} else {
		report.PendingDeposits = agg
	}

	if agg, err := uow.RequestRepository().AggregatePending(ctx, models.RequestKindWithdrawal); err != nil {
		log.WithError(err).Warn("Pending withdrawal aggregate failed, defaulting to zero")
	} else {
		report.PendingWithdrawals = agg
	}

	if agg, err := uow.RequestRepository().AggregateDecidedBetween(ctx, models.RequestKindDeposit, dayStart, dayEnd); err != nil {
		log.WithError(err).Warn("Today deposit aggregate failed, defaulting to zero")
	} else {
		report.DepositsToday = agg
	}

	if agg, err := uow.RequestRepository().AggregateDecidedBetween(ctx, models.RequestKindWithdrawal, dayStart, dayEnd); err != nil {
		log.WithError(err).Warn("Today withdrawal aggregate failed, defaulting to zero")
	} else {
		report.WithdrawalsToday = agg
	}

	if rounds, wagered, paidOut, err := uow.GameRoundRepository().AggregateBetween(ctx, dayStart, dayEnd); err != nil {
		log.WithError(err).Warn("Game round aggregate failed, defaulting to zero")
	} else {
		report.GameRoundsToday = rounds
		report.WageredToday = wagered
		report.PaidOutToday = paidOut
	}

	if approved, rejected, err := uow.RequestRepository().DecisionCounts(ctx); err != nil {
		log.WithError(err).Warn("Decision counts failed, defaulting to zero")
	} else if approved+rejected > 0 {
		report.ApprovalRate = float64(approved) / float64(approved+rejected)
	}

	s.cache.Set(ctx, now, report)

	return report, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.DashboardServiceHandler = (*DashboardService)(nil)

// DashboardService implements the Connect DashboardService: the caller's
// balances and spending across every group and direct expense.
type DashboardService struct {
	Deps
	now func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(deps Deps) *DashboardService {
	return &DashboardService{Deps: deps.withDefaults(), now: time.Now}
}

// GetUserBalances aggregates the caller's unpaid direct (group-less)
// expenses into what they owe and are owed, per counterparty.
func (s *DashboardService) GetUserBalances(ctx context.Context, _ *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("GetUserBalances request received", "user_id", userID)

	expenses, err := s.Store.ListDirectExpensesForUser(ctx, userID)
	if err != nil {
		s.Logger.Error("GetUserBalances failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	users, err := s.Users.GetUsers(ctx, ledger.Counterparties(userID, expenses))
	if err != nil {
		s.Logger.Error("GetUserBalances failed - user lookup", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	b := ledger.ComputeUserBalances(userID, expenses, users)

	s.Logger.Info("GetUserBalances successful",
		"user_id", userID,
		"you_owe", b.YouOwe,
		"you_are_owed", b.YouAreOwed,
	)

	return connect.NewResponse(&api.GetUserBalancesResponse{
		YouOwe:       b.YouOwe,
		YouAreOwed:   b.YouAreOwed,
		TotalBalance: b.TotalBalance,
		OweDetails: api.OweDetails{
			YouOwe:       toAPICounterparties(b.OweDetails.YouOwe),
			YouAreOwedBy: toAPICounterparties(b.OweDetails.YouAreOwedBy),
		},
	}), nil
}

// GetTotalSpent sums the caller's own shares of expenses dated this year (UTC).
func (s *DashboardService) GetTotalSpent(ctx context.Context, _ *connect.Request[api.GetTotalSpentRequest]) (*connect.Response[api.GetTotalSpentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	since := ledger.StartOfYear(s.now().UTC())
	expenses, err := s.Store.ListExpensesSince(ctx, userID, since)
	if err != nil {
		s.Logger.Error("GetTotalSpent failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetTotalSpentResponse{
		TotalSpent: ledger.TotalSpent(userID, expenses, since),
	}), nil
}

// GetMonthlySpending returns twelve monthly totals of the caller's own shares
// for the current year (UTC), January first.
func (s *DashboardService) GetMonthlySpending(ctx context.Context, _ *connect.Request[api.GetMonthlySpendingRequest]) (*connect.Response[api.GetMonthlySpendingResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expenses, err := s.Store.ListExpensesSince(ctx, userID, ledger.StartOfYear(now))
	if err != nil {
		s.Logger.Error("GetMonthlySpending failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	totals := ledger.MonthlySpending(userID, expenses, now.Year(), time.UTC)
	months := make([]api.MonthlyTotal, len(totals))
	for i, t := range totals {
		months[i] = api.MonthlyTotal{Month: t.Month, Total: t.Total}
	}
	return connect.NewResponse(&api.GetMonthlySpendingResponse{Months: months}), nil
}

// GetUserGroups lists the caller's groups, each with the caller's rolled-up
// balance in it. Group balances are computed concurrently.
func (s *DashboardService) GetUserGroups(ctx context.Context, _ *connect.Request[api.GetUserGroupsRequest]) (*connect.Response[api.GetUserGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("GetUserGroups request received", "user_id", userID)

	groups, err := s.Store.ListGroupsForUser(ctx, userID)
	if err != nil {
		s.Logger.Error("GetUserGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.GroupBalance, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.LookupConcurrency)
	for i, group := range groups {
		g.Go(func() error {
			expenses, err := s.Store.ListExpensesByGroup(gctx, group.ID)
			if err != nil {
				return fmt.Errorf("failed to list expenses of group %s: %w", group.ID, err)
			}
			out[i] = api.GroupBalance{
				GroupSummary: toAPIGroupSummary(group),
				Balance:      ledger.GroupBalanceFor(userID, expenses),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Logger.Error("GetUserGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetUserGroupsResponse{Groups: out}), nil
}

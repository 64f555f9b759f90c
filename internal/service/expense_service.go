package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	Deps
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(deps Deps) *ExpenseService {
	return &ExpenseService{Deps: deps.withDefaults()}
}

// CreateExpense records an expense. The caller must pay or owe part of it,
// and for a group expense every participant must be a member of the group.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.Logger.Info("CreateExpense request received",
		"user_id", userID,
		"group_id", msg.GroupID,
		"amount", msg.Amount,
	)

	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, invalidArgument("description is required")
	}
	if !(msg.Amount > 0) || math.IsInf(msg.Amount, 0) {
		return nil, invalidArgument("amount must be positive")
	}
	paidBy := msg.PaidByUserID
	if paidBy == "" {
		paidBy = userID
	}

	splits, err := buildSplits(msg)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Description:  description,
		Amount:       msg.Amount,
		Category:     strings.TrimSpace(msg.Category),
		Date:         msg.Date,
		PaidByUserID: paidBy,
		GroupID:      msg.GroupID,
		CreatedBy:    userID,
		Splits:       splits,
	}
	if !expense.Involves(userID) {
		return nil, toConnectError(ErrNotParticipant)
	}

	participants := append([]string{paidBy}, splitUserIDs(splits)...)
	if expense.GroupID != "" {
		group, err := s.Store.GetGroup(ctx, expense.GroupID)
		if err != nil {
			return nil, toConnectError(err)
		}
		if !group.HasMember(userID) {
			return nil, toConnectError(ErrNotMember)
		}
		for _, id := range participants {
			if !group.HasMember(id) {
				return nil, invalidArgument(fmt.Sprintf("user %q is not a member of the group", id))
			}
		}
	} else {
		users, err := s.Users.GetUsers(ctx, participants)
		if err != nil {
			return nil, toConnectError(err)
		}
		for _, id := range participants {
			if _, ok := users[id]; !ok {
				return nil, invalidArgument(fmt.Sprintf("unknown user %q", id))
			}
		}
	}

	if err := s.Store.CreateExpense(ctx, expense); err != nil {
		s.Logger.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	s.Logger.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID, "splits", len(splits))
	out := toAPIExpense(expense)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: &out}), nil
}

// splitTolerance is how far explicit splits may drift from the expense amount.
var splitTolerance = decimal.New(1, -2)

// buildSplits takes explicit splits when given, otherwise divides the amount
// evenly among SplitEquallyAmong. Explicit splits must add up to the amount
// within a cent.
func buildSplits(msg *api.CreateExpenseRequest) ([]models.Split, error) {
	if len(msg.Splits) == 0 {
		if len(msg.SplitEquallyAmong) == 0 {
			return nil, invalidArgument("at least one split is required")
		}
		splits, err := ledger.SplitEqually(msg.Amount, msg.SplitEquallyAmong)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return splits, nil
	}

	seen := make(map[string]bool, len(msg.Splits))
	splits := make([]models.Split, len(msg.Splits))
	sum := decimal.Zero
	for i, sp := range msg.Splits {
		switch {
		case sp.UserID == "":
			return nil, invalidArgument("split user is required")
		case seen[sp.UserID]:
			return nil, invalidArgument(fmt.Sprintf("duplicate split for user %q", sp.UserID))
		case sp.Amount < 0 || math.IsNaN(sp.Amount) || math.IsInf(sp.Amount, 0):
			return nil, invalidArgument(fmt.Sprintf("invalid split amount for user %q", sp.UserID))
		}
		seen[sp.UserID] = true
		sum = sum.Add(decimal.NewFromFloat(sp.Amount))
		splits[i] = models.Split{UserID: sp.UserID, Amount: sp.Amount, Paid: sp.Paid}
	}
	if sum.Sub(decimal.NewFromFloat(msg.Amount)).Abs().GreaterThan(splitTolerance) {
		return nil, invalidArgument(fmt.Sprintf("splits add up to %s, expense amount is %s",
			sum.StringFixed(2), decimal.NewFromFloat(msg.Amount).StringFixed(2)))
	}
	return splits, nil
}

func splitUserIDs(splits []models.Split) []string {
	ids := make([]string, len(splits))
	for i, sp := range splits {
		ids[i] = sp.UserID
	}
	return ids
}

// MarkSplitPaid settles one user's split. Only the expense's payer or the
// split's owner may do this. An empty UserID means the caller's own split.
func (s *ExpenseService) MarkSplitPaid(ctx context.Context, req *connect.Request[api.MarkSplitPaidRequest]) (*connect.Response[api.MarkSplitPaidResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	target := req.Msg.UserID
	if target == "" {
		target = userID
	}
	s.Logger.Info("MarkSplitPaid request received", "expense_id", req.Msg.ExpenseID, "user_id", userID, "split_user_id", target)

	if req.Msg.ExpenseID == "" {
		return nil, invalidArgument("expense_id required")
	}

	expense, err := s.Store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if userID != expense.PaidByUserID && userID != target {
		return nil, toConnectError(ErrNotParticipant)
	}

	if err := s.Store.MarkSplitPaid(ctx, expense.ID, target); err != nil {
		s.Logger.Warn("MarkSplitPaid failed", "expense_id", expense.ID, "split_user_id", target, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.Store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.Logger.Info("Split marked paid", "expense_id", expense.ID, "split_user_id", target)
	out := toAPIExpense(updated)
	return connect.NewResponse(&api.MarkSplitPaidResponse{Expense: &out}), nil
}

// DeleteExpense removes an expense. Only its creator or payer may do this.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID, "user_id", userID)

	if req.Msg.ExpenseID == "" {
		return nil, invalidArgument("expense_id required")
	}

	expense, err := s.Store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if userID != expense.CreatedBy && userID != expense.PaidByUserID {
		return nil, toConnectError(ErrNotExpenseOwner)
	}

	if err := s.Store.DeleteExpense(ctx, expense.ID); err != nil {
		s.Logger.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.Logger.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

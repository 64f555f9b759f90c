package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateExpense_SplitEqually(t *testing.T) {
	env := setupTestServer(t)
	a, b, c := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "C")

	e := env.addExpense(t, a, &api.CreateExpenseRequest{
		Description:       "Pizza",
		Amount:            100,
		Category:          "food",
		SplitEquallyAmong: []string{a.ID, b.ID, c.ID},
	})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, a.ID, e.PaidByUserID, "payer defaults to the caller")
	assert.Equal(t, a.ID, e.CreatedBy)
	assert.Empty(t, e.GroupID)
	assert.NotZero(t, e.Date)
	require.Len(t, e.Splits, 3)
	assert.Equal(t, 33.34, e.Splits[0].Amount)
	assert.Equal(t, 33.33, e.Splits[1].Amount)
	assert.Equal(t, 33.33, e.Splits[2].Amount)
}

func TestCreateExpense_ExplicitSplitsWithinACent(t *testing.T) {
	env := setupTestServer(t)
	a, b, c := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "C")

	e := env.addExpense(t, a, &api.CreateExpenseRequest{
		Description: "Snacks", Amount: 10,
		Splits: []api.Split{{UserID: a.ID, Amount: 3.33}, {UserID: b.ID, Amount: 3.33}, {UserID: c.ID, Amount: 3.33}},
	})

	require.Len(t, e.Splits, 3)
	assert.Equal(t, 3.33, e.Splits[2].Amount)
}

func TestCreateExpense_Validation(t *testing.T) {
	env := setupTestServer(t)
	a, b, outsider := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "Eve")
	groupID := env.createGroup(t, a, b)
	ctx := context.Background()

	tests := []struct {
		name string
		as   testUser
		req  *api.CreateExpenseRequest
		code connect.Code
	}{
		{
			name: "missing description",
			as:   a,
			req:  &api.CreateExpenseRequest{Amount: 10, SplitEquallyAmong: []string{a.ID, b.ID}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "non-positive amount",
			as:   a,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 0, SplitEquallyAmong: []string{a.ID, b.ID}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "no splits",
			as:   a,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 10},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "duplicate split",
			as:   a,
			req: &api.CreateExpenseRequest{Description: "x", Amount: 10, Splits: []api.Split{
				{UserID: b.ID, Amount: 5}, {UserID: b.ID, Amount: 5},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "negative split",
			as:   a,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 10, Splits: []api.Split{{UserID: b.ID, Amount: -1}}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "splits short of amount",
			as:   a,
			req: &api.CreateExpenseRequest{Description: "x", Amount: 10, Splits: []api.Split{
				{UserID: a.ID, Amount: 3}, {UserID: b.ID, Amount: 3},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "splits over amount",
			as:   a,
			req: &api.CreateExpenseRequest{Description: "x", Amount: 10, Splits: []api.Split{
				{UserID: a.ID, Amount: 5}, {UserID: b.ID, Amount: 5.02},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "caller not involved",
			as:   outsider,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 10, PaidByUserID: a.ID, SplitEquallyAmong: []string{b.ID}},
			code: connect.CodePermissionDenied,
		},
		{
			name: "unknown participant",
			as:   a,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 10, SplitEquallyAmong: []string{a.ID, "nobody"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "caller not in group",
			as:   outsider,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 10, GroupID: groupID, SplitEquallyAmong: []string{outsider.ID, a.ID}},
			code: connect.CodePermissionDenied,
		},
		{
			name: "participant not in group",
			as:   a,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 10, GroupID: groupID, SplitEquallyAmong: []string{a.ID, outsider.ID}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown group",
			as:   a,
			req:  &api.CreateExpenseRequest{Description: "x", Amount: 10, GroupID: "missing", SplitEquallyAmong: []string{a.ID}},
			code: connect.CodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.CreateExpense(ctx, as(tt.as, tt.req))
			requireCode(t, err, tt.code)
		})
	}
}

func TestMarkSplitPaid(t *testing.T) {
	env := setupTestServer(t)
	a, b, c := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "C")
	ctx := context.Background()

	e := env.addExpense(t, a, &api.CreateExpenseRequest{
		Description: "Tickets", Amount: 30, SplitEquallyAmong: []string{a.ID, b.ID, c.ID},
	})

	// C may not settle B's split.
	_, err := env.expenses.MarkSplitPaid(ctx, as(c, &api.MarkSplitPaidRequest{ExpenseID: e.ID, UserID: b.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	// B settles their own split; empty UserID means the caller.
	resp, err := env.expenses.MarkSplitPaid(ctx, as(b, &api.MarkSplitPaidRequest{ExpenseID: e.ID}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Expense.Splits[1].Paid)
	assert.False(t, resp.Msg.Expense.Splits[2].Paid)

	// The payer may settle anyone's split.
	resp, err = env.expenses.MarkSplitPaid(ctx, as(a, &api.MarkSplitPaidRequest{ExpenseID: e.ID, UserID: c.ID}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Expense.Splits[2].Paid)

	_, err = env.expenses.MarkSplitPaid(ctx, as(a, &api.MarkSplitPaidRequest{ExpenseID: e.ID, UserID: "nobody"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = env.expenses.MarkSplitPaid(ctx, as(a, &api.MarkSplitPaidRequest{ExpenseID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	balances, err := env.dash.GetUserBalances(ctx, as(a, &api.GetUserBalancesRequest{}))
	require.NoError(t, err)
	assert.Zero(t, balances.Msg.YouAreOwed)
}

func TestDeleteExpense(t *testing.T) {
	env := setupTestServer(t)
	a, b, c := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "C")
	ctx := context.Background()

	// A records an expense B paid.
	e := env.addExpense(t, a, &api.CreateExpenseRequest{
		Description: "Hotel", Amount: 200, PaidByUserID: b.ID, SplitEquallyAmong: []string{a.ID, b.ID, c.ID},
	})

	_, err := env.expenses.DeleteExpense(ctx, as(c, &api.DeleteExpenseRequest{ExpenseID: e.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.expenses.DeleteExpense(ctx, as(b, &api.DeleteExpenseRequest{ExpenseID: e.ID}))
	require.NoError(t, err)

	_, err = env.expenses.DeleteExpense(ctx, as(a, &api.DeleteExpenseRequest{ExpenseID: e.ID}))
	requireCode(t, err, connect.CodeNotFound)
}

package service

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice, bob := env.addUser(t, "Alice"), env.addUser(t, "Bob")

	resp, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{
		Name:      "  Roommates ",
		MemberIDs: []string{bob.ID, alice.ID, bob.ID},
	}))
	require.NoError(t, err)

	g := resp.Msg.Group
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Roommates", g.Name)
	assert.Equal(t, alice.ID, g.CreatedBy)
	require.Len(t, g.Members, 2)
	assert.Equal(t, api.Member{ID: alice.ID, Name: "Alice", Email: "alice@example.com", Role: "admin"}, g.Members[0])
	assert.Equal(t, "member", g.Members[1].Role)
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.addUser(t, "Alice")
	ctx := context.Background()

	_, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: " "}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "X", MemberIDs: []string{"nobody"}}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

// Scenario: three members, one even expense paid by A.
func TestGetGroupExpenses_Settlement(t *testing.T) {
	env := setupTestServer(t)
	a, b, c := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "C")
	groupID := env.createGroup(t, a, b, c)

	env.addExpense(t, a, &api.CreateExpenseRequest{
		Description:       "Dinner",
		Amount:            90,
		GroupID:           groupID,
		SplitEquallyAmong: []string{a.ID, b.ID, c.ID},
	})

	resp, err := env.groups.GetGroupExpenses(context.Background(), as(b, &api.GetGroupExpensesRequest{GroupID: groupID}))
	require.NoError(t, err)

	msg := resp.Msg
	assert.Equal(t, "Trip", msg.Group.Name)
	assert.Equal(t, 3, msg.Group.MemberCount)
	require.Len(t, msg.Expenses, 1)
	require.Len(t, msg.Members, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{msg.Members[0].Name, msg.Members[1].Name, msg.Members[2].Name})
	assert.Len(t, msg.UserLookup, 3)

	require.Len(t, msg.Balances, 3)
	assert.Equal(t, 60.0, msg.Balances[0].TotalBalance)
	assert.Equal(t, []api.OwedBy{{From: b.ID, Amount: 30}, {From: c.ID, Amount: 30}}, msg.Balances[0].OwedBy)
	assert.Equal(t, -30.0, msg.Balances[1].TotalBalance)
	assert.Equal(t, []api.Owe{{To: a.ID, Amount: 30}}, msg.Balances[1].Owes)
	assert.Empty(t, msg.Balances[1].OwedBy)
	assert.Equal(t, []api.Owe{{To: a.ID, Amount: 30}}, msg.Balances[2].Owes)
	assert.Equal(t, "C", msg.Balances[2].Name)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Settlements))
}

// Scenario: mutual unpaid splits in two expenses cancel out.
func TestGetGroupExpenses_MutualDebtsCancel(t *testing.T) {
	env := setupTestServer(t)
	a, b := env.addUser(t, "A"), env.addUser(t, "B")
	groupID := env.createGroup(t, a, b)

	env.addExpense(t, a, &api.CreateExpenseRequest{
		Description: "Groceries", Amount: 50, GroupID: groupID, PaidByUserID: a.ID,
		Splits: []api.Split{{UserID: a.ID, Amount: 25, Paid: true}, {UserID: b.ID, Amount: 25}},
	})
	env.addExpense(t, b, &api.CreateExpenseRequest{
		Description: "Gas", Amount: 50, GroupID: groupID, PaidByUserID: b.ID,
		Splits: []api.Split{{UserID: a.ID, Amount: 25}, {UserID: b.ID, Amount: 25, Paid: true}},
	})

	resp, err := env.groups.GetGroupExpenses(context.Background(), as(a, &api.GetGroupExpensesRequest{GroupID: groupID}))
	require.NoError(t, err)
	for _, bal := range resp.Msg.Balances {
		assert.Zero(t, bal.TotalBalance)
		assert.Empty(t, bal.Owes)
		assert.Empty(t, bal.OwedBy)
	}
}

func TestGetGroupExpenses_Access(t *testing.T) {
	env := setupTestServer(t)
	a, b, outsider := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "Eve")
	groupID := env.createGroup(t, a, b)
	ctx := context.Background()

	_, err := env.groups.GetGroupExpenses(ctx, as(outsider, &api.GetGroupExpensesRequest{GroupID: groupID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroupExpenses(ctx, as(a, &api.GetGroupExpensesRequest{GroupID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroupExpenses(ctx, as(a, &api.GetGroupExpensesRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.GetGroupExpenses(ctx, connect.NewRequest(&api.GetGroupExpensesRequest{GroupID: groupID}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

// A member whose user record is gone still shows up with a placeholder name.
func TestGetGroupExpenses_MissingMemberRecord(t *testing.T) {
	env := setupTestServer(t)
	a := env.addUser(t, "A")
	ctx := context.Background()

	group := &models.Group{
		Name:      "Legacy",
		CreatedBy: a.ID,
		Members:   []models.GroupMember{{UserID: a.ID, Role: models.RoleAdmin}, {UserID: "ghost"}},
	}
	require.NoError(t, env.store.CreateGroup(ctx, group))
	require.NoError(t, env.store.CreateExpense(ctx, &models.Expense{
		Description: "Old", Amount: 10, PaidByUserID: a.ID, GroupID: group.ID, CreatedBy: a.ID,
		Splits: []models.Split{{UserID: "ghost", Amount: 10}},
	}))

	resp, err := env.groups.GetGroupExpenses(ctx, as(a, &api.GetGroupExpensesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Members, 2)
	assert.Equal(t, ledger.UnknownUserName, resp.Msg.Members[1].Name)
	assert.Equal(t, ledger.UnknownUserName, resp.Msg.Balances[1].Name)
	assert.Equal(t, -10.0, resp.Msg.Balances[1].TotalBalance)
}

func TestGetGroupsOrMembers(t *testing.T) {
	env := setupTestServer(t)
	a, b, c := env.addUser(t, "A"), env.addUser(t, "B"), env.addUser(t, "C")
	g1 := env.createGroup(t, a, b)
	env.createGroup(t, b, c)
	ctx := context.Background()

	resp, err := env.groups.GetGroupsOrMembers(ctx, as(a, &api.GetGroupsOrMembersRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Groups, 1)
	assert.Nil(t, resp.Msg.SelectedGroup)

	resp, err = env.groups.GetGroupsOrMembers(ctx, as(b, &api.GetGroupsOrMembersRequest{GroupID: g1}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Groups, 2)
	require.NotNil(t, resp.Msg.SelectedGroup)
	require.Len(t, resp.Msg.SelectedGroup.Members, 2)
	assert.Equal(t, "A", resp.Msg.SelectedGroup.Members[0].Name)

	_, err = env.groups.GetGroupsOrMembers(ctx, as(c, &api.GetGroupsOrMembersRequest{GroupID: g1}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestDeleteGroup_CascadesExpenses(t *testing.T) {
	env := setupTestServer(t)
	a, b := env.addUser(t, "A"), env.addUser(t, "B")
	groupID := env.createGroup(t, a, b)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		e := env.addExpense(t, b, &api.CreateExpenseRequest{
			Description: "Item", Amount: 10, GroupID: groupID, SplitEquallyAmong: []string{a.ID, b.ID},
		})
		ids = append(ids, e.ID)
	}

	resp, err := env.groups.DeleteGroup(ctx, as(a, &api.DeleteGroupRequest{GroupID: groupID}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Success)
	assert.Equal(t, 5, resp.Msg.ExpensesDeleted)

	_, err = env.store.GetGroup(ctx, groupID)
	assert.Error(t, err)
	for _, id := range ids {
		_, err := env.store.GetExpense(ctx, id)
		assert.Error(t, err, "expense %s should be gone", id)
	}

	_, err = env.groups.DeleteGroup(ctx, as(a, &api.DeleteGroupRequest{GroupID: groupID}))
	requireCode(t, err, connect.CodeNotFound)
}

// failingDeleteStore refuses every group delete.
type failingDeleteStore struct {
	storage.Store
}

func (failingDeleteStore) DeleteGroup(context.Context, string) (int, error) {
	return 0, errors.New("disk full")
}

func TestDeleteGroup_StoreFailureKeepsExpenses(t *testing.T) {
	env := setupTestServerWith(t, func(s storage.Store) storage.Store {
		return failingDeleteStore{Store: s}
	})
	a, b := env.addUser(t, "A"), env.addUser(t, "B")
	groupID := env.createGroup(t, a, b)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		e := env.addExpense(t, b, &api.CreateExpenseRequest{
			Description: "Item", Amount: 10, GroupID: groupID, SplitEquallyAmong: []string{a.ID, b.ID},
		})
		ids = append(ids, e.ID)
	}

	_, err := env.groups.DeleteGroup(ctx, as(a, &api.DeleteGroupRequest{GroupID: groupID}))
	requireCode(t, err, connect.CodeInternal)

	_, err = env.store.GetGroup(ctx, groupID)
	require.NoError(t, err)
	for _, id := range ids {
		_, err := env.store.GetExpense(ctx, id)
		assert.NoError(t, err, "expense %s should survive", id)
	}
}

// An admin who did not create the group may not delete it, and nothing is
// removed.
func TestDeleteGroup_NonCreatorAdminDenied(t *testing.T) {
	env := setupTestServer(t)
	a, b := env.addUser(t, "A"), env.addUser(t, "B")
	ctx := context.Background()

	group := &models.Group{
		Name:      "Shared",
		CreatedBy: a.ID,
		Members: []models.GroupMember{
			{UserID: a.ID, Role: models.RoleAdmin},
			{UserID: b.ID, Role: models.RoleAdmin},
		},
	}
	require.NoError(t, env.store.CreateGroup(ctx, group))
	e := env.addExpense(t, b, &api.CreateExpenseRequest{
		Description: "Taxi", Amount: 20, GroupID: group.ID, SplitEquallyAmong: []string{a.ID, b.ID},
	})

	_, err := env.groups.DeleteGroup(ctx, as(b, &api.DeleteGroupRequest{GroupID: group.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.store.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	_, err = env.store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
}

func TestDeleteGroup_Outsider(t *testing.T) {
	env := setupTestServer(t)
	a, outsider := env.addUser(t, "A"), env.addUser(t, "Eve")
	groupID := env.createGroup(t, a)

	_, err := env.groups.DeleteGroup(context.Background(), as(outsider, &api.DeleteGroupRequest{GroupID: groupID}))
	requireCode(t, err, connect.CodePermissionDenied)
}

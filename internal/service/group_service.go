package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	Deps
}

// NewGroupService creates a new GroupService.
func NewGroupService(deps Deps) *GroupService {
	return &GroupService{Deps: deps.withDefaults()}
}

// CreateGroup creates a group owned by the caller. The caller becomes its
// admin; every other listed user joins as a member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("CreateGroup request received",
		"user_id", userID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("group name is required")
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		CreatedBy:   userID,
		Members:     []models.GroupMember{{UserID: userID, Role: models.RoleAdmin}},
	}
	for _, id := range req.Msg.MemberIDs {
		if id == "" || group.HasMember(id) {
			continue
		}
		group.Members = append(group.Members, models.GroupMember{UserID: id, Role: models.RoleMember})
	}

	users, err := s.Users.GetUsers(ctx, group.MemberIDs())
	if err != nil {
		s.Logger.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}
	for _, m := range group.Members {
		if _, ok := users[m.UserID]; !ok {
			return nil, invalidArgument(fmt.Sprintf("unknown user %q", m.UserID))
		}
	}

	if err := s.Store.CreateGroup(ctx, group); err != nil {
		s.Logger.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	members := make([]api.Member, len(group.Members))
	for i, m := range group.Members {
		members[i] = toAPIMember(m.UserID, m.Role, users[m.UserID])
	}

	s.Logger.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, members)}), nil
}

// GetGroupExpenses returns a group's expenses together with the simplified
// settlement between its members. Only members and the creator may view it.
func (s *GroupService) GetGroupExpenses(ctx context.Context, req *connect.Request[api.GetGroupExpensesRequest]) (*connect.Response[api.GetGroupExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	s.Logger.Info("GetGroupExpenses request received", "group_id", groupID, "user_id", userID)

	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}

	group, err := s.Store.GetGroup(ctx, groupID)
	if err != nil {
		s.Logger.Warn("GetGroupExpenses failed - group not found", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	if !group.HasMember(userID) && group.CreatedBy != userID {
		s.Logger.Warn("GetGroupExpenses denied", "group_id", groupID, "user_id", userID)
		return nil, toConnectError(ErrNotMember)
	}

	var (
		members  []api.Member
		expenses []*models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.fetchMembers(gctx, group)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.Store.ListExpensesByGroup(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.Logger.Error("GetGroupExpenses failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	start := time.Now()
	settlement := ledger.ComputeGroupSettlement(group.MemberIDs(), expenses)
	s.Metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	s.Metrics.Settlements.Inc()
	transfers := settlement.Transfers()
	s.Metrics.SettlementTransfers.Observe(float64(len(transfers)))

	lookup := make(map[string]api.Member, len(members))
	for _, m := range members {
		lookup[m.ID] = m
	}
	balances := make([]api.MemberBalance, len(settlement.Members))
	for i, ms := range settlement.Members {
		balances[i] = toAPIMemberBalance(lookup[ms.UserID], ms)
	}

	s.Logger.Info("GetGroupExpenses successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"members_count", len(members),
		"transfers_count", len(transfers),
	)

	return connect.NewResponse(&api.GetGroupExpensesResponse{
		Group:      toAPIGroupSummary(group),
		Members:    members,
		Expenses:   toAPIExpenses(expenses),
		Balances:   balances,
		UserLookup: lookup,
	}), nil
}

// fetchMembers loads every member's profile in parallel, preserving member
// order. A member whose user record is gone is described as Unknown.
func (s *GroupService) fetchMembers(ctx context.Context, group *models.Group) ([]api.Member, error) {
	members := make([]api.Member, len(group.Members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.LookupConcurrency)
	for i, m := range group.Members {
		g.Go(func() error {
			user, err := s.Users.GetUser(gctx, m.UserID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to fetch member %s: %w", m.UserID, err)
			}
			members[i] = toAPIMember(m.UserID, m.Role, user)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return members, nil
}

// GetGroupsOrMembers lists the caller's groups. When a group ID is given, the
// response also carries that group with its members' details; members whose
// user record is gone are omitted.
func (s *GroupService) GetGroupsOrMembers(ctx context.Context, req *connect.Request[api.GetGroupsOrMembersRequest]) (*connect.Response[api.GetGroupsOrMembersResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("GetGroupsOrMembers request received", "user_id", userID, "group_id", req.Msg.GroupID)

	groups, err := s.Store.ListGroupsForUser(ctx, userID)
	if err != nil {
		s.Logger.Error("GetGroupsOrMembers failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.GetGroupsOrMembersResponse{Groups: make([]api.GroupSummary, len(groups))}
	for i, g := range groups {
		resp.Groups[i] = toAPIGroupSummary(g)
	}

	if req.Msg.GroupID == "" {
		return connect.NewResponse(resp), nil
	}

	idx := slices.IndexFunc(groups, func(g *models.Group) bool { return g.ID == req.Msg.GroupID })
	if idx < 0 {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("group %s: %w", req.Msg.GroupID, storage.ErrNotFound))
	}
	selected := groups[idx]

	users, err := s.Users.GetUsers(ctx, selected.MemberIDs())
	if err != nil {
		s.Logger.Error("GetGroupsOrMembers failed", "group_id", selected.ID, "error", err)
		return nil, toConnectError(err)
	}
	members := make([]api.Member, 0, len(selected.Members))
	for _, m := range selected.Members {
		if u, ok := users[m.UserID]; ok {
			members = append(members, toAPIMember(m.UserID, m.Role, u))
		}
	}
	resp.SelectedGroup = toAPIGroup(selected, members)

	return connect.NewResponse(resp), nil
}

// DeleteGroup removes a group and every expense in it. The caller must be a
// member and the group's creator; both are checked before anything is touched.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	s.Logger.Info("DeleteGroup request received", "group_id", groupID, "user_id", userID)

	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}

	group, err := s.Store.GetGroup(ctx, groupID)
	if err != nil {
		s.Logger.Warn("DeleteGroup failed - group not found", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	if !group.HasMember(userID) {
		s.Logger.Warn("DeleteGroup denied - not a member", "group_id", groupID, "user_id", userID)
		return nil, toConnectError(ErrNotMember)
	}
	if group.CreatedBy != userID {
		s.Logger.Warn("DeleteGroup denied - not the creator", "group_id", groupID, "user_id", userID)
		return nil, toConnectError(ErrNotCreator)
	}

	deleted, err := s.Store.DeleteGroup(ctx, groupID)
	if err != nil {
		s.Logger.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	s.Logger.Info("Group deleted", "group_id", groupID, "expenses_deleted", deleted)
	return connect.NewResponse(&api.DeleteGroupResponse{Success: true, ExpensesDeleted: deleted}), nil
}

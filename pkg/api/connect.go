package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	AuthServiceName      = "splitledger.v1.AuthService"
	GroupServiceName     = "splitledger.v1.GroupService"
	ExpenseServiceName   = "splitledger.v1.ExpenseService"
	DashboardServiceName = "splitledger.v1.DashboardService"
)

// Fully-qualified procedure names, used as HTTP paths.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	GroupServiceCreateGroupProcedure        = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupExpensesProcedure   = "/" + GroupServiceName + "/GetGroupExpenses"
	GroupServiceGetGroupsOrMembersProcedure = "/" + GroupServiceName + "/GetGroupsOrMembers"
	GroupServiceDeleteGroupProcedure        = "/" + GroupServiceName + "/DeleteGroup"

	ExpenseServiceCreateExpenseProcedure = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceMarkSplitPaidProcedure = "/" + ExpenseServiceName + "/MarkSplitPaid"
	ExpenseServiceDeleteExpenseProcedure = "/" + ExpenseServiceName + "/DeleteExpense"

	DashboardServiceGetUserBalancesProcedure    = "/" + DashboardServiceName + "/GetUserBalances"
	DashboardServiceGetTotalSpentProcedure      = "/" + DashboardServiceName + "/GetTotalSpent"
	DashboardServiceGetMonthlySpendingProcedure = "/" + DashboardServiceName + "/GetMonthlySpending"
	DashboardServiceGetUserGroupsProcedure      = "/" + DashboardServiceName + "/GetUserGroups"
)

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroupExpenses(context.Context, *connect.Request[GetGroupExpensesRequest]) (*connect.Response[GetGroupExpensesResponse], error)
	GetGroupsOrMembers(context.Context, *connect.Request[GetGroupsOrMembersRequest]) (*connect.Response[GetGroupsOrMembersResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
}

// ExpenseServiceHandler is implemented by the expense service.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	MarkSplitPaid(context.Context, *connect.Request[MarkSplitPaidRequest]) (*connect.Response[MarkSplitPaidResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
}

// DashboardServiceHandler is implemented by the dashboard service.
type DashboardServiceHandler interface {
	GetUserBalances(context.Context, *connect.Request[GetUserBalancesRequest]) (*connect.Response[GetUserBalancesResponse], error)
	GetTotalSpent(context.Context, *connect.Request[GetTotalSpentRequest]) (*connect.Response[GetTotalSpentResponse], error)
	GetMonthlySpending(context.Context, *connect.Request[GetMonthlySpendingRequest]) (*connect.Response[GetMonthlySpendingResponse], error)
	GetUserGroups(context.Context, *connect.Request[GetUserGroupsRequest]) (*connect.Response[GetUserGroupsResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func unary[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// NewAuthServiceHandler builds an HTTP handler for svc. Mount the handler at
// the returned path.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	unary(mux, AuthServiceLoginProcedure, svc.Login, opts)
	unary(mux, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts)
	return "/" + AuthServiceName + "/", mux
}

// NewGroupServiceHandler builds an HTTP handler for svc.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, GroupServiceCreateGroupProcedure, svc.CreateGroup, opts)
	unary(mux, GroupServiceGetGroupExpensesProcedure, svc.GetGroupExpenses, opts)
	unary(mux, GroupServiceGetGroupsOrMembersProcedure, svc.GetGroupsOrMembers, opts)
	unary(mux, GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts)
	return "/" + GroupServiceName + "/", mux
}

// NewExpenseServiceHandler builds an HTTP handler for svc.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts)
	unary(mux, ExpenseServiceMarkSplitPaidProcedure, svc.MarkSplitPaid, opts)
	unary(mux, ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts)
	return "/" + ExpenseServiceName + "/", mux
}

// NewDashboardServiceHandler builds an HTTP handler for svc.
func NewDashboardServiceHandler(svc DashboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, DashboardServiceGetUserBalancesProcedure, svc.GetUserBalances, opts)
	unary(mux, DashboardServiceGetTotalSpentProcedure, svc.GetTotalSpent, opts)
	unary(mux, DashboardServiceGetMonthlySpendingProcedure, svc.GetMonthlySpending, opts)
	unary(mux, DashboardServiceGetUserGroupsProcedure, svc.GetUserGroups, opts)
	return "/" + DashboardServiceName + "/", mux
}

// AuthServiceClient calls the auth service.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

// NewAuthServiceClient constructs a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &AuthServiceClient{
		register:       connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// GroupServiceClient calls the group service.
type GroupServiceClient struct {
	createGroup        *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroupExpenses   *connect.Client[GetGroupExpensesRequest, GetGroupExpensesResponse]
	getGroupsOrMembers *connect.Client[GetGroupsOrMembersRequest, GetGroupsOrMembersResponse]
	deleteGroup        *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
}

// NewGroupServiceClient constructs a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:        connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroupExpenses:   connect.NewClient[GetGroupExpensesRequest, GetGroupExpensesResponse](httpClient, baseURL+GroupServiceGetGroupExpensesProcedure, opts...),
		getGroupsOrMembers: connect.NewClient[GetGroupsOrMembersRequest, GetGroupsOrMembersResponse](httpClient, baseURL+GroupServiceGetGroupsOrMembersProcedure, opts...),
		deleteGroup:        connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupExpenses(ctx context.Context, req *connect.Request[GetGroupExpensesRequest]) (*connect.Response[GetGroupExpensesResponse], error) {
	return c.getGroupExpenses.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupsOrMembers(ctx context.Context, req *connect.Request[GetGroupsOrMembersRequest]) (*connect.Response[GetGroupsOrMembersResponse], error) {
	return c.getGroupsOrMembers.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// ExpenseServiceClient calls the expense service.
type ExpenseServiceClient struct {
	createExpense *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	markSplitPaid *connect.Client[MarkSplitPaidRequest, MarkSplitPaidResponse]
	deleteExpense *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
}

// NewExpenseServiceClient constructs a client for the service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		createExpense: connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		markSplitPaid: connect.NewClient[MarkSplitPaidRequest, MarkSplitPaidResponse](httpClient, baseURL+ExpenseServiceMarkSplitPaidProcedure, opts...),
		deleteExpense: connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) MarkSplitPaid(ctx context.Context, req *connect.Request[MarkSplitPaidRequest]) (*connect.Response[MarkSplitPaidResponse], error) {
	return c.markSplitPaid.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

// DashboardServiceClient calls the dashboard service.
type DashboardServiceClient struct {
	getUserBalances    *connect.Client[GetUserBalancesRequest, GetUserBalancesResponse]
	getTotalSpent      *connect.Client[GetTotalSpentRequest, GetTotalSpentResponse]
	getMonthlySpending *connect.Client[GetMonthlySpendingRequest, GetMonthlySpendingResponse]
	getUserGroups      *connect.Client[GetUserGroupsRequest, GetUserGroupsResponse]
}

// NewDashboardServiceClient constructs a client for the service at baseURL.
func NewDashboardServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DashboardServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &DashboardServiceClient{
		getUserBalances:    connect.NewClient[GetUserBalancesRequest, GetUserBalancesResponse](httpClient, baseURL+DashboardServiceGetUserBalancesProcedure, opts...),
		getTotalSpent:      connect.NewClient[GetTotalSpentRequest, GetTotalSpentResponse](httpClient, baseURL+DashboardServiceGetTotalSpentProcedure, opts...),
		getMonthlySpending: connect.NewClient[GetMonthlySpendingRequest, GetMonthlySpendingResponse](httpClient, baseURL+DashboardServiceGetMonthlySpendingProcedure, opts...),
		getUserGroups:      connect.NewClient[GetUserGroupsRequest, GetUserGroupsResponse](httpClient, baseURL+DashboardServiceGetUserGroupsProcedure, opts...),
	}
}

func (c *DashboardServiceClient) GetUserBalances(ctx context.Context, req *connect.Request[GetUserBalancesRequest]) (*connect.Response[GetUserBalancesResponse], error) {
	return c.getUserBalances.CallUnary(ctx, req)
}

func (c *DashboardServiceClient) GetTotalSpent(ctx context.Context, req *connect.Request[GetTotalSpentRequest]) (*connect.Response[GetTotalSpentResponse], error) {
	return c.getTotalSpent.CallUnary(ctx, req)
}

func (c *DashboardServiceClient) GetMonthlySpending(ctx context.Context, req *connect.Request[GetMonthlySpendingRequest]) (*connect.Response[GetMonthlySpendingResponse], error) {
	return c.getMonthlySpending.CallUnary(ctx, req)
}

func (c *DashboardServiceClient) GetUserGroups(ctx context.Context, req *connect.Request[GetUserGroupsRequest]) (*connect.Response[GetUserGroupsResponse], error) {
	return c.getUserGroups.CallUnary(ctx, req)
}

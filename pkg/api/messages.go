package api

// User is a user's public profile.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Member is a group member with profile details.
type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"createdBy"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
	Members     []Member `json:"members"`
}

type GroupSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"memberCount"`
}

type Split struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
}

type Expense struct {
	ID           string  `json:"id"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category,omitempty"`
	Date         int64   `json:"date"`
	PaidByUserID string  `json:"paidByUserId"`
	GroupID      string  `json:"groupId,omitempty"`
	CreatedBy    string  `json:"createdBy"`
	CreatedAt    int64   `json:"createdAt"`
	Splits       []Split `json:"splits"`
}

type Owe struct {
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type OwedBy struct {
	From   string  `json:"from"`
	Amount float64 `json:"amount"`
}

// MemberBalance is one member's settled position within a group.
type MemberBalance struct {
	Member
	TotalBalance float64  `json:"totalBalance"`
	Owes         []Owe    `json:"owes"`
	OwedBy       []OwedBy `json:"owedBy"`
}

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupExpensesResponse struct {
	Group      GroupSummary      `json:"group"`
	Members    []Member          `json:"members"`
	Expenses   []Expense         `json:"expenses"`
	Balances   []MemberBalance   `json:"balances"`
	UserLookup map[string]Member `json:"userLookupMap"`
}

type GetGroupsOrMembersRequest struct {
	// GroupID optionally selects one of the caller's groups.
	GroupID string `json:"groupId,omitempty"`
}

type GetGroupsOrMembersResponse struct {
	SelectedGroup *Group         `json:"selectedGroup"`
	Groups        []GroupSummary `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct {
	Success         bool `json:"success"`
	ExpensesDeleted int  `json:"expensesDeleted"`
}

type CreateExpenseRequest struct {
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category,omitempty"`
	Date         int64   `json:"date,omitempty"`
	PaidByUserID string  `json:"paidByUserId"`
	GroupID      string  `json:"groupId,omitempty"`

	// Splits gives explicit per-user amounts. When empty, SplitEquallyAmong
	// is used to divide Amount evenly to the cent.
	Splits            []Split  `json:"splits,omitempty"`
	SplitEquallyAmong []string `json:"splitEquallyAmong,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type MarkSplitPaidRequest struct {
	ExpenseID string `json:"expenseId"`
	UserID    string `json:"userId"`
}

type MarkSplitPaidResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type CounterpartyBalance struct {
	UserID    string  `json:"userId"`
	Name      string  `json:"name"`
	AvatarURL string  `json:"imageUrl,omitempty"`
	Amount    float64 `json:"amount"`
}

type OweDetails struct {
	YouOwe       []CounterpartyBalance `json:"youOwe"`
	YouAreOwedBy []CounterpartyBalance `json:"youAreOwedBy"`
}

type GetUserBalancesRequest struct{}

type GetUserBalancesResponse struct {
	YouOwe       float64    `json:"youOwe"`
	YouAreOwed   float64    `json:"youAreOwed"`
	TotalBalance float64    `json:"totalBalance"`
	OweDetails   OweDetails `json:"oweDetails"`
}

type GetTotalSpentRequest struct{}

type GetTotalSpentResponse struct {
	TotalSpent float64 `json:"totalSpent"`
}

type MonthlyTotal struct {
	Month int64   `json:"month"`
	Total float64 `json:"total"`
}

type GetMonthlySpendingRequest struct{}

type GetMonthlySpendingResponse struct {
	Months []MonthlyTotal `json:"months"`
}

type GroupBalance struct {
	GroupSummary
	Balance float64 `json:"balance"`
}

type GetUserGroupsRequest struct{}

type GetUserGroupsResponse struct {
	Groups []GroupBalance `json:"groups"`
}

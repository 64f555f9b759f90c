package service

import (
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
	}
}

// toAPIMember describes a member. A nil user yields the placeholder name.
func toAPIMember(userID string, role models.Role, u *models.User) api.Member {
	m := api.Member{ID: userID, Name: ledger.UnknownUserName, Role: string(role)}
	if u != nil {
		m.Name = u.DisplayName
		m.Email = u.Email
		m.AvatarURL = u.AvatarURL
	}
	return m
}

func toAPIGroupSummary(g *models.Group) api.GroupSummary {
	return api.GroupSummary{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		MemberCount: len(g.Members),
	}
}

func toAPIGroup(g *models.Group, members []api.Member) *api.Group {
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		Members:     members,
	}
}

func toAPIExpense(e *models.Expense) api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{UserID: s.UserID, Amount: s.Amount, Paid: s.Paid}
	}
	return api.Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Category:     e.Category,
		Date:         e.Date,
		PaidByUserID: e.PaidByUserID,
		GroupID:      e.GroupID,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
		Splits:       splits,
	}
}

func toAPIExpenses(expenses []*models.Expense) []api.Expense {
	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPIMemberBalance(member api.Member, s ledger.MemberSettlement) api.MemberBalance {
	owes := make([]api.Owe, len(s.Owes))
	for i, o := range s.Owes {
		owes[i] = api.Owe{To: o.To, Amount: o.Amount}
	}
	owedBy := make([]api.OwedBy, len(s.OwedBy))
	for i, o := range s.OwedBy {
		owedBy[i] = api.OwedBy{From: o.From, Amount: o.Amount}
	}
	return api.MemberBalance{
		Member:       member,
		TotalBalance: s.NetBalance,
		Owes:         owes,
		OwedBy:       owedBy,
	}
}

func toAPICounterparties(list []ledger.CounterpartyBalance) []api.CounterpartyBalance {
	out := make([]api.CounterpartyBalance, len(list))
	for i, c := range list {
		out[i] = api.CounterpartyBalance{
			UserID:    c.UserID,
			Name:      c.Name,
			AvatarURL: c.AvatarURL,
			Amount:    c.Amount,
		}
	}
	return out
}

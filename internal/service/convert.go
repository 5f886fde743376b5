package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/api"
)

func groupToAPI(g *models.Group) *api.Group {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func billToAPI(b *models.Bill) *api.Bill {
	mode, err := calculator.ParseSplitMode(b.SplitMode)
	if err != nil {
		mode = calculator.ByAmount
	}
	shares := make([]api.Share, len(b.Shares))
	for i, s := range b.Shares {
		shares[i] = api.Share{
			Member: s.Member,
			Value:  shareValueToAPI(mode, s.Value),
			Edited: s.Edited,
			Amount: s.Amount.Decimal(),
		}
	}
	return &api.Bill{
		ID:        b.ID,
		GroupID:   b.GroupID,
		Title:     b.Title,
		PayerID:   b.PayerID,
		Total:     b.Total.Decimal(),
		SplitMode: b.SplitMode,
		Shares:    shares,
		CreatedAt: b.CreatedAt,
	}
}

func paymentToAPI(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:        p.ID,
		GroupID:   p.GroupID,
		FromID:    p.FromID,
		ToID:      p.ToID,
		Amount:    p.Amount.Decimal(),
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}

func transfersToAPI(transfers []calculator.Transfer) []*api.Transfer {
	out := make([]*api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = &api.Transfer{From: t.From, To: t.To, Amount: t.Amount.Decimal()}
	}
	return out
}

// shareValueToAPI renders a share value in the unit of its mode.
func shareValueToAPI(mode calculator.SplitMode, v int64) decimal.Decimal {
	if mode == calculator.ByPercent {
		return money.Percent(v).Decimal()
	}
	return money.Amount(v).Decimal()
}

// shareValueFromAPI parses a share value in the unit of its mode.
func shareValueFromAPI(mode calculator.SplitMode, d decimal.Decimal) (int64, error) {
	if mode == calculator.ByPercent {
		p, err := money.PercentFromDecimal(d)
		if err != nil {
			return 0, invalidArgument("value: %v", err)
		}
		return int64(p), nil
	}
	a, err := money.AmountFromDecimal(d)
	if err != nil {
		return 0, invalidArgument("value: %v", err)
	}
	return int64(a), nil
}

// sharesToAPI lists shares in participant order, attaching resolved amounts
// when they are known.
func sharesToAPI(mode calculator.SplitMode, order []string, shares calculator.ShareMap, amounts map[string]money.Amount) []api.Share {
	entries := shares.Ordered(order)
	out := make([]api.Share, len(entries))
	for i, e := range entries {
		out[i] = api.Share{
			Member: e.Member,
			Value:  shareValueToAPI(mode, e.Value),
			Edited: e.Edited,
			Amount: amounts[e.Member].Decimal(),
		}
	}
	return out
}

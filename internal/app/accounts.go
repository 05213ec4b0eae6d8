package app

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const DefaultColor = "#6366f1"

// AccountPatch holds the fields to change; nil fields are kept.
type AccountPatch struct {
	Name         *string           `json:"name"`
	Type         *core.AccountType `json:"type"`
	Balance      *decimal.Decimal  `json:"balance"`
	Currency     *string           `json:"currency"`
	Color        *string           `json:"color"`
	IsPersonal   *bool             `json:"isPersonal"`
	InterestRate *decimal.Decimal  `json:"interestRate"`
	CreditLimit  *decimal.Decimal  `json:"creditLimit"`
}

func (p AccountPatch) applyTo(a *core.Account) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	if p.Currency != nil {
		a.Currency = *p.Currency
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if p.IsPersonal != nil {
		a.IsPersonal = *p.IsPersonal
	}
	if p.InterestRate != nil {
		v := *p.InterestRate
		a.InterestRate = &v
	}
	if p.CreditLimit != nil {
		v := *p.CreditLimit
		a.CreditLimit = &v
	}
}

func accountIndex(doc *core.Document, id string) int {
	for i, a := range doc.Accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func validAccount(a core.Account) error {
	if err := a.Validate(); err != nil {
		switch err {
		case core.ErrEmptyName:
			return invalid("name", err)
		default:
			return invalid("type", err)
		}
	}
	return nil
}

// AddAccount stores a new account with a fresh id. Empty type, currency and
// color take the defaults of the account form.
func (c *Controller) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	_, err := c.apply(ctx, "add_account", func(doc *core.Document) error {
		a.ID = c.newID()
		if a.Type == "" {
			a.Type = core.Checking
		}
		if a.Currency == "" {
			a.Currency = doc.Settings.Currency
		}
		if a.Color == "" {
			a.Color = DefaultColor
		}
		if err := validAccount(a); err != nil {
			return err
		}
		doc.Accounts = append(doc.Accounts, a)
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.Account{}, err
	}
	return a, err
}

// UpdateAccount merges patch into the account with id.
func (c *Controller) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (core.Account, error) {
	var out core.Account
	_, err := c.apply(ctx, "update_account", func(doc *core.Document) error {
		i := accountIndex(doc, id)
		if i < 0 {
			return notFound("account", id)
		}
		a := doc.Accounts[i]
		patch.applyTo(&a)
		if err := validAccount(a); err != nil {
			return err
		}
		doc.Accounts[i] = a
		out = a
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.Account{}, err
	}
	return out, err
}

// DeleteAccount removes the account. Its transactions and pots are kept.
func (c *Controller) DeleteAccount(ctx context.Context, id string) error {
	_, err := c.apply(ctx, "delete_account", func(doc *core.Document) error {
		i := accountIndex(doc, id)
		if i < 0 {
			return notFound("account", id)
		}
		doc.Accounts = append(doc.Accounts[:i], doc.Accounts[i+1:]...)
		return nil
	})
	return err
}

// SetInterestRate edits the growth rate used by projections. The range is
// not enforced.
func (c *Controller) SetInterestRate(ctx context.Context, id string, rate decimal.Decimal) (core.Account, error) {
	return c.UpdateAccount(ctx, id, AccountPatch{InterestRate: &rate})
}

package app

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// TransactionPatch holds the fields to change; nil fields are kept.
type TransactionPatch struct {
	AccountID   *string               `json:"accountId"`
	Date        *string               `json:"date"`
	Description *string               `json:"description"`
	Amount      *decimal.Decimal      `json:"amount"`
	Category    *string               `json:"category"`
	SubCategory *string               `json:"subCategory"`
	Type        *core.TransactionType `json:"type"`
	IsPersonal  *bool                 `json:"isPersonal"`
}

func (p TransactionPatch) applyTo(t *core.Transaction) {
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.SubCategory != nil {
		t.SubCategory = *p.SubCategory
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.IsPersonal != nil {
		t.IsPersonal = *p.IsPersonal
	}
}

func transactionIndex(doc *core.Document, id string) int {
	for i, t := range doc.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// prepare fills defaults and enforces the expense sign rule.
func (c *Controller) prepare(t *core.Transaction) error {
	if t.Type == "" {
		t.Type = core.Income
		if t.Amount.IsNegative() {
			t.Type = core.Expense
		}
	}
	if t.Category == "" {
		t.Category = core.DefaultCategory
	}
	if c.taxonomy.SubCategories(t.Category) != nil {
		t.SubCategory = c.taxonomy.Normalize(t.Category, t.SubCategory)
	}
	t.Amount = core.SignedFor(t.Type, t.Amount)

	if err := t.Validate(); err != nil {
		switch err {
		case core.ErrEmptyDescription:
			return invalid("description", err)
		case core.ErrZeroAmount:
			return invalid("amount", err)
		default:
			return invalid("type", err)
		}
	}
	return nil
}

// AddTransaction stores a new transaction. An empty date means today and an
// empty type is inferred from the sign.
func (c *Controller) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	_, err := c.apply(ctx, "add_transaction", func(doc *core.Document) error {
		t.ID = c.newID()
		if t.Date == "" {
			t.Date = c.Today()
		}
		if err := c.prepare(&t); err != nil {
			return err
		}
		doc.Transactions = append(doc.Transactions, t)
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.Transaction{}, err
	}
	return t, err
}

// UpdateTransaction merges patch into the transaction with id. A category
// change selects a valid sub-category.
func (c *Controller) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, error) {
	var out core.Transaction
	_, err := c.apply(ctx, "update_transaction", func(doc *core.Document) error {
		i := transactionIndex(doc, id)
		if i < 0 {
			return notFound("transaction", id)
		}
		t := doc.Transactions[i]
		patch.applyTo(&t)
		if err := c.prepare(&t); err != nil {
			return err
		}
		doc.Transactions[i] = t
		out = t
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.Transaction{}, err
	}
	return out, err
}

func (c *Controller) DeleteTransaction(ctx context.Context, id string) error {
	_, err := c.apply(ctx, "delete_transaction", func(doc *core.Document) error {
		i := transactionIndex(doc, id)
		if i < 0 {
			return notFound("transaction", id)
		}
		doc.Transactions = append(doc.Transactions[:i], doc.Transactions[i+1:]...)
		return nil
	})
	return err
}

// ImportTransactions appends already mapped rows as one command and returns
// how many were added.
func (c *Controller) ImportTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	added := make([]core.Transaction, len(txs))
	_, err := c.apply(ctx, "import_transactions", func(doc *core.Document) error {
		for i, t := range txs {
			if t.ID == "" {
				t.ID = c.newID()
			}
			if err := t.Validate(); err != nil {
				return invalid("transactions", err)
			}
			added[i] = t
		}
		doc.Transactions = append(doc.Transactions, added...)
		return nil
	})
	if err != nil && !isPersist(err) {
		return 0, err
	}
	return len(added), err
}

package app

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var ErrNonPositiveAmount = errors.New("amount must be positive")

func potIndex(doc *core.Document, id string) int {
	for i, p := range doc.Pots {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// AddPot stores a new savings goal. current is clamped to [0, target].
func (c *Controller) AddPot(ctx context.Context, p core.Pot) (core.Pot, error) {
	_, err := c.apply(ctx, "add_pot", func(doc *core.Document) error {
		p.ID = c.newID()
		if p.Color == "" {
			p.Color = DefaultColor
		}
		if p.Current.IsNegative() {
			p.Current = decimal.Zero
		}
		if err := p.Validate(); err != nil {
			if err == core.ErrEmptyName {
				return invalid("name", err)
			}
			return invalid("target", err)
		}
		if p.Current.GreaterThan(p.Target) {
			p.Current = p.Target
		}
		doc.Pots = append(doc.Pots, p)
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.Pot{}, err
	}
	return p, err
}

// AddToPot raises current by amount without passing target. A pot already
// above its target keeps its current value.
func (c *Controller) AddToPot(ctx context.Context, id string, amount decimal.Decimal) (core.Pot, error) {
	if !amount.IsPositive() {
		return core.Pot{}, invalid("amount", ErrNonPositiveAmount)
	}
	var out core.Pot
	_, err := c.apply(ctx, "add_to_pot", func(doc *core.Document) error {
		i := potIndex(doc, id)
		if i < 0 {
			return notFound("pot", id)
		}
		p := doc.Pots[i]
		p.Current = decimal.Max(p.Current, decimal.Min(p.Target, p.Current.Add(amount)))
		doc.Pots[i] = p
		out = p
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.Pot{}, err
	}
	return out, err
}

func (c *Controller) DeletePot(ctx context.Context, id string) error {
	_, err := c.apply(ctx, "delete_pot", func(doc *core.Document) error {
		i := potIndex(doc, id)
		if i < 0 {
			return notFound("pot", id)
		}
		doc.Pots = append(doc.Pots[:i], doc.Pots[i+1:]...)
		return nil
	})
	return err
}

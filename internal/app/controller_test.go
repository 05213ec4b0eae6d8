package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

type failingStore struct {
	*store.Memory
	failSet bool
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errors.New("disk full")
	}
	return s.Memory.Set(ctx, key, value)
}

type recordingPublisher struct {
	commands []string
	versions []uint64
	err      error
}

func (p *recordingPublisher) PublishDocumentChanged(_ context.Context, key string, version uint64, command string) error {
	p.commands = append(p.commands, command)
	p.versions = append(p.versions, version)
	return p.err
}

func newTestController(t *testing.T, s store.Store, opts ...Option) *Controller {
	t.Helper()
	n := 0
	base := []Option{
		WithLogger(log.Discard()),
		WithClock(func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }),
		WithIDs(func() string {
			n++
			return fmt.Sprintf("id%d", n)
		}),
	}
	c := New(s, append(base, opts...)...)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func TestLoadSeedsWhenMissing(t *testing.T) {
	c := newTestController(t, store.NewMemory())
	doc, version := c.Snapshot()
	if version != 0 || len(doc.Accounts) != 5 || doc.CurrentUser != core.OwnerID {
		t.Fatalf("expected seed at version 0, got version %d with %d accounts", version, len(doc.Accounts))
	}
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	c := newTestController(t, s)
	if _, err := c.AddAccount(ctx, core.Account{Name: "Cash", Type: core.Checking, Balance: decimal.NewFromInt(20), IsPersonal: true}); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	reloaded := newTestController(t, s)
	doc, _ := reloaded.Snapshot()
	if len(doc.Accounts) != 6 || doc.Accounts[5].Name != "Cash" {
		t.Fatalf("account not persisted: %+v", doc.Accounts)
	}
}

func TestLoadCorruptDocument(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	_ = s.Set(ctx, store.DocumentKey, "{not json")
	c := New(s, WithLogger(log.Discard()))
	err := c.Load(ctx)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Fatalf("Load() error = %v, want ErrCorruptDocument", err)
	}
	if doc, _ := c.Snapshot(); len(doc.Accounts) != 5 {
		t.Fatalf("expected seed after corrupt load")
	}
}

func TestCommandsPublishAndBumpVersion(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	c := newTestController(t, store.NewMemory(), WithPublisher(pub))

	if _, err := c.AddUser(ctx, core.User{Name: "Sam", Role: core.RoleEditor}); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if err := c.DeletePot(ctx, "p2"); err != nil {
		t.Fatalf("DeletePot() error = %v", err)
	}
	if c.Version() != 2 {
		t.Fatalf("Version() = %d, want 2", c.Version())
	}
	if strings.Join(pub.commands, ",") != "add_user,delete_pot" || pub.versions[1] != 2 {
		t.Fatalf("unexpected events %v %v", pub.commands, pub.versions)
	}
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := newTestController(t, store.NewMemory(), WithPublisher(pub))
	if err := c.DeleteTransaction(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
}

func TestPersistFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := &failingStore{Memory: store.NewMemory()}
	c := newTestController(t, s, WithPublisher(pub))
	s.failSet = true

	acc, err := c.AddAccount(ctx, core.Account{Name: "Offline", Type: core.Savings})
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("AddAccount() error = %v, want ErrPersist", err)
	}
	if acc.ID == "" {
		t.Fatalf("account should be returned even when the save fails")
	}
	doc, version := c.Snapshot()
	if version != 1 || doc.Accounts[len(doc.Accounts)-1].Name != "Offline" {
		t.Fatalf("snapshot should hold the new account")
	}
	if len(pub.commands) != 0 {
		t.Fatalf("unsaved changes must not be published")
	}

	s.failSet = false
	if err := c.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.Get(ctx, store.DocumentKey); err != nil {
		t.Fatalf("document not saved on retry: %v", err)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	c := newTestController(t, store.NewMemory())
	doc, _ := c.Snapshot()
	doc.Accounts[0].Name = "changed"
	*doc.Accounts[1].InterestRate = decimal.NewFromInt(99)

	again, _ := c.Snapshot()
	if again.Accounts[0].Name == "changed" || again.Accounts[1].InterestRate.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("snapshot leaked into controller state")
	}
}

func TestAccountCommands(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, store.NewMemory())

	acc, err := c.AddAccount(ctx, core.Account{Name: "ISA", Type: core.Investment, Balance: decimal.NewFromInt(1000), IsPersonal: true})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if acc.ID != "id1" || acc.Currency != "£" || acc.Color != DefaultColor {
		t.Fatalf("unexpected defaults %+v", acc)
	}

	name := "Stocks ISA"
	updated, err := c.UpdateAccount(ctx, acc.ID, AccountPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}
	if updated.Name != name || !updated.Balance.Equal(decimal.NewFromInt(1000)) || updated.Type != core.Investment {
		t.Fatalf("patch should merge, got %+v", updated)
	}

	rated, err := c.SetInterestRate(ctx, acc.ID, decimal.NewFromFloat(6.5))
	if err != nil || rated.Rate(7) != 6.5 {
		t.Fatalf("SetInterestRate() = %+v, %v", rated, err)
	}

	if err := c.DeleteAccount(ctx, acc.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if err := c.DeleteAccount(ctx, acc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteAccount() error = %v, want ErrNotFound", err)
	}
}

func TestAccountValidation(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, store.NewMemory())

	tests := []struct {
		name    string
		account core.Account
		field   string
	}{
		{"empty name", core.Account{Type: core.Checking}, "name"},
		{"bad type", core.Account{Name: "x", Type: "crypto"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.AddAccount(ctx, tt.account)
			var verr *ValidationError
			if !errors.As(err, &verr) || !errors.Is(err, ErrValidation) {
				t.Fatalf("AddAccount() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
	if c.Version() != 0 {
		t.Fatalf("rejected commands must not change the version")
	}
}

func TestTransactionCommands(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, store.NewMemory())

	tx, err := c.AddTransaction(ctx, core.Transaction{
		AccountID: "a1", Description: "Train", Amount: decimal.NewFromFloat(12.5),
		Type: core.Expense, Category: "Transport", SubCategory: "Nope", IsPersonal: true,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if !tx.Amount.Equal(decimal.NewFromFloat(-12.5)) {
		t.Fatalf("expense amount should be negative, got %s", tx.Amount)
	}
	if tx.Date != "2025-03-09" {
		t.Fatalf("empty date should default to today, got %q", tx.Date)
	}
	if want := core.Categories.DefaultSub("Transport"); tx.SubCategory != want {
		t.Fatalf("sub-category = %q, want %q", tx.SubCategory, want)
	}

	cat := "Food"
	updated, err := c.UpdateTransaction(ctx, tx.ID, TransactionPatch{Category: &cat})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if updated.Description != "Train" || updated.SubCategory != core.Categories.DefaultSub("Food") {
		t.Fatalf("unexpected merge %+v", updated)
	}

	zero := decimal.Zero
	if _, err := c.UpdateTransaction(ctx, tx.ID, TransactionPatch{Amount: &zero}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero amount error = %v, want ErrValidation", err)
	}
	if _, err := c.AddTransaction(ctx, core.Transaction{Amount: decimal.NewFromInt(1)}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("empty description error = %v", err)
	}
	if _, err := c.UpdateTransaction(ctx, "missing", TransactionPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing transaction error = %v", err)
	}
}

func TestImportTransactions(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, store.NewMemory())
	rows := []core.Transaction{
		{AccountID: "a1", Date: "2025-01-01", Description: "Coffee", Amount: decimal.NewFromFloat(-3.5), Category: "Other", SubCategory: "Unknown", Type: core.Expense, IsPersonal: true},
	}
	n, err := c.ImportTransactions(ctx, rows)
	if err != nil || n != 1 {
		t.Fatalf("ImportTransactions() = %d, %v", n, err)
	}
	if rows[0].ID != "" {
		t.Fatalf("input rows must not be modified")
	}
	doc, _ := c.Snapshot()
	last := doc.Transactions[len(doc.Transactions)-1]
	if last.Description != "Coffee" || last.SubCategory != "Unknown" || last.ID == "" {
		t.Fatalf("unexpected imported row %+v", last)
	}
	if n, err := c.ImportTransactions(ctx, nil); n != 0 || err != nil || c.Version() != 1 {
		t.Fatalf("empty import should be a no-op")
	}
}

func TestPotProgressIsMonotonicAndCapped(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, store.NewMemory())

	pot, err := c.AddPot(ctx, core.Pot{Name: "Car", Target: decimal.NewFromInt(1000), Current: decimal.NewFromInt(-5), AccountID: "a2"})
	if err != nil {
		t.Fatalf("AddPot() error = %v", err)
	}
	if !pot.Current.IsZero() {
		t.Fatalf("negative current should clamp to zero, got %s", pot.Current)
	}

	prev := pot.Current
	for _, add := range []int64{300, 450, 200, 500, 1} {
		p, err := c.AddToPot(ctx, pot.ID, decimal.NewFromInt(add))
		if err != nil {
			t.Fatalf("AddToPot() error = %v", err)
		}
		if p.Current.LessThan(prev) {
			t.Fatalf("current decreased from %s to %s", prev, p.Current)
		}
		if p.Current.GreaterThan(p.Target) {
			t.Fatalf("current %s exceeds target %s", p.Current, p.Target)
		}
		prev = p.Current
	}
	if !prev.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected pot to be full, got %s", prev)
	}

	if _, err := c.AddToPot(ctx, pot.ID, decimal.NewFromInt(-10)); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("negative add error = %v", err)
	}
	if _, err := c.AddPot(ctx, core.Pot{Name: "Nothing"}); !errors.Is(err, core.ErrInvalidTarget) {
		t.Fatalf("zero target error = %v", err)
	}
	over, err := c.AddPot(ctx, core.Pot{Name: "Over", Target: decimal.NewFromInt(10), Current: decimal.NewFromInt(50)})
	if err != nil || !over.Current.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("current above target should clamp, got %+v, %v", over, err)
	}
}

func TestAddToPotKeepsOverfundedCurrent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	doc := core.Seed()
	doc.Pots[0].Current = decimal.NewFromInt(6000)
	data, err := doc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, store.DocumentKey, string(data)); err != nil {
		t.Fatal(err)
	}
	c := newTestController(t, s)

	p, err := c.AddToPot(ctx, "p1", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddToPot() error = %v", err)
	}
	if !p.Current.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("current = %s, want 6000 kept", p.Current)
	}
}

func TestUserCommands(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, store.NewMemory())

	if err := c.DeleteUser(ctx, core.OwnerID); !errors.Is(err, ErrUndeletableUser) {
		t.Fatalf("DeleteUser(owner) error = %v", err)
	}
	u, err := c.AddUser(ctx, core.User{Name: "Alex", Email: "alex@example.com"})
	if err != nil || u.Role != core.RoleViewer {
		t.Fatalf("AddUser() = %+v, %v", u, err)
	}
	if _, err := c.AddUser(ctx, core.User{Name: "Bad", Role: "admin"}); !errors.Is(err, core.ErrInvalidRole) {
		t.Fatalf("invalid role error = %v", err)
	}
	if err := c.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if err := c.DeleteUser(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteUser() error = %v", err)
	}

	renamed, err := c.RenameCurrentUser(ctx, "Jo")
	if err != nil || renamed.Name != "Jo" || renamed.ID != core.OwnerID {
		t.Fatalf("RenameCurrentUser() = %+v, %v", renamed, err)
	}
	if _, err := c.RenameCurrentUser(ctx, " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank rename error = %v", err)
	}
}

func TestSettingsAndReset(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, store.NewMemory())

	dollar, off := "$", false
	s, err := c.UpdateSettings(ctx, SettingsPatch{Currency: &dollar, DarkMode: &off})
	if err != nil || s.Currency != "$" || s.DarkMode {
		t.Fatalf("UpdateSettings() = %+v, %v", s, err)
	}

	if err := c.Reset(ctx, false); !errors.Is(err, ErrResetUnconfirmed) {
		t.Fatalf("unconfirmed reset error = %v", err)
	}
	if err := c.Reset(ctx, true); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	doc, _ := c.Snapshot()
	if doc.Settings.Currency != "£" || !doc.Settings.DarkMode {
		t.Fatalf("reset should restore the seed settings, got %+v", doc.Settings)
	}
}

func TestExport(t *testing.T) {
	c := newTestController(t, store.NewMemory())
	var buf bytes.Buffer
	if err := c.Export(&buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	doc, err := core.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("export is not a valid document: %v", err)
	}
	if len(doc.Transactions) != 5 || !strings.Contains(buf.String(), "\n  \"users\"") {
		t.Fatalf("unexpected export:\n%s", buf.String())
	}
}

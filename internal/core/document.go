package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerID is the seeded owner; it can never be deleted.
const OwnerID = "u1"

// Document is the root of all persisted state.
type Document struct {
	Users        []User        `json:"users"`
	CurrentUser  string        `json:"currentUser"`
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Pots         []Pot         `json:"pots"`
	Settings     Settings      `json:"settings"`
}

// NewID returns a random opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a deep copy so a command can mutate it freely.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Users:        make([]User, len(d.Users)),
		CurrentUser:  d.CurrentUser,
		Accounts:     make([]Account, len(d.Accounts)),
		Transactions: make([]Transaction, len(d.Transactions)),
		Pots:         make([]Pot, len(d.Pots)),
		Settings:     d.Settings,
	}
	copy(out.Users, d.Users)
	copy(out.Transactions, d.Transactions)
	copy(out.Pots, d.Pots)
	for i, a := range d.Accounts {
		a.InterestRate = clonePtr(a.InterestRate)
		a.CreditLimit = clonePtr(a.CreditLimit)
		out.Accounts[i] = a
	}
	return out
}

func clonePtr(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Account returns the account with id.
func (d *Document) Account(id string) (Account, bool) {
	for _, a := range d.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// AccountName returns the account name for id, or "" when unknown.
func (d *Document) AccountName(id string) string {
	a, _ := d.Account(id)
	return a.Name
}

// Decode parses a stored document. Missing lists decode as empty.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	if d.Pots == nil {
		d.Pots = []Pot{}
	}
	return &d, nil
}

// Encode serializes the document compactly for storage.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// EncodeIndent serializes the document pretty-printed for export.
func (d *Document) EncodeIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Seed returns the first-run document.
func Seed() *Document {
	return &Document{
		Users:       []User{{ID: OwnerID, Name: "Me", Role: RoleOwner, Email: ""}},
		CurrentUser: OwnerID,
		Accounts: []Account{
			{ID: "a1", Name: "Barclays Current", Type: Checking, Balance: Decimal(3240.50), Currency: "£", Color: "#6366f1", IsPersonal: true},
			{ID: "a2", Name: "Monzo Savings", Type: Savings, Balance: Decimal(8500), Currency: "£", Color: "#10b981", InterestRate: DecimalPtr(4.5), IsPersonal: true},
			{ID: "a3", Name: "Visa Credit Card", Type: CreditCard, Balance: Decimal(-1200), Currency: "£", Color: "#ef4444", InterestRate: DecimalPtr(22.9), CreditLimit: DecimalPtr(5000), IsPersonal: true},
			{ID: "a4", Name: "Aviva Pension", Type: Pension, Balance: Decimal(42000), Currency: "£", Color: "#8b5cf6", InterestRate: DecimalPtr(7), IsPersonal: true},
			{ID: "a5", Name: "Business Account", Type: BusinessAccount, Balance: Decimal(15000), Currency: "£", Color: "#f59e0b", IsPersonal: false},
		},
		Transactions: []Transaction{
			{ID: "t1", AccountID: "a1", Date: "2025-02-15", Description: "Tesco Groceries", Amount: Decimal(-65.40), Category: "Food", SubCategory: "Groceries", Type: Expense, IsPersonal: true},
			{ID: "t2", AccountID: "a1", Date: "2025-02-14", Description: "Netflix", Amount: Decimal(-15.99), Category: "Subscriptions", SubCategory: "Streaming", Type: Expense, IsPersonal: true},
			{ID: "t3", AccountID: "a1", Date: "2025-02-12", Description: "Salary", Amount: Decimal(3500), Category: "Income", SubCategory: "Salary", Type: Income, IsPersonal: true},
			{ID: "t4", AccountID: "a5", Date: "2025-02-10", Description: "Client Invoice #42", Amount: Decimal(5000), Category: "Income", SubCategory: "Business Income", Type: Income, IsPersonal: false},
			{ID: "t5", AccountID: "a5", Date: "2025-02-08", Description: "Office Supplies", Amount: Decimal(-234), Category: "Business", SubCategory: "Office Supplies", Type: Expense, IsPersonal: false},
		},
		Pots: []Pot{
			{ID: "p1", Name: "Emergency Fund", Target: Decimal(5000), Current: Decimal(3200), Color: "#10b981", AccountID: "a2"},
			{ID: "p2", Name: "Holiday 2025", Target: Decimal(3000), Current: Decimal(800), Color: "#06b6d4", AccountID: "a2"},
		},
		Settings: Settings{Currency: "£", DarkMode: true},
	}
}

package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Personal Mode = "personal"
	Business Mode = "business"
)

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

const (
	Checking        AccountType = "checking"
	Savings         AccountType = "savings"
	CreditCard      AccountType = "credit_card"
	Pension         AccountType = "pension"
	Investment      AccountType = "investment"
	BusinessAccount AccountType = "business"
	Loan            AccountType = "loan"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

type (
	// Mode selects the personal or business universe of accounts and transactions.
	Mode string

	// Role is an informational label; nothing enforces it.
	Role string

	AccountType string

	TransactionType string

	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Role  Role   `json:"role"`
		Email string `json:"email"`
	}

	Account struct {
		ID           string           `json:"id"`
		Name         string           `json:"name"`
		Type         AccountType      `json:"type"`
		Balance      decimal.Decimal  `json:"balance"`
		Currency     string           `json:"currency"`
		Color        string           `json:"color"`
		IsPersonal   bool             `json:"isPersonal"`
		InterestRate *decimal.Decimal `json:"interestRate,omitempty"` // percent per annum
		CreditLimit  *decimal.Decimal `json:"creditLimit,omitempty"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		AccountID   string          `json:"accountId"`
		Date        string          `json:"date"` // YYYY-MM-DD
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"` // positive inflow, negative outflow
		Category    string          `json:"category"`
		SubCategory string          `json:"subCategory"`
		Type        TransactionType `json:"type"`
		IsPersonal  bool            `json:"isPersonal"`
	}

	// Pot is a savings goal linked to an account.
	Pot struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Target    decimal.Decimal `json:"target"`
		Current   decimal.Decimal `json:"current"`
		Color     string          `json:"color"`
		AccountID string          `json:"accountId"`
	}

	Settings struct {
		Currency string `json:"currency"`
		DarkMode bool   `json:"darkMode"`
	}
)

var (
	ErrInvalidMode            = errors.New("invalid mode")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrEmptyName              = errors.New("empty name")
	ErrEmptyDescription       = errors.New("empty description")
	ErrZeroAmount             = errors.New("amount cannot be zero")
	ErrInvalidTarget          = errors.New("target must be positive")
	ErrNegativeCurrent        = errors.New("current cannot be negative")
)

// ParseMode accepts "personal" or "business"; an empty string means personal.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Personal:
		return Personal, nil
	case Business:
		return Business, nil
	default:
		return "", ErrInvalidMode
	}
}

// IsPersonal reports whether entities of this mode carry isPersonal=true.
func (m Mode) IsPersonal() bool {
	return m != Business
}

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

func (t AccountType) IsValid() bool {
	switch t {
	case Checking, Savings, CreditCard, Pension, Investment, BusinessAccount, Loan:
		return true
	}
	return false
}

// AccountTypes lists the account kinds in display order.
func AccountTypes() []AccountType {
	return []AccountType{Checking, Savings, CreditCard, Pension, Investment, BusinessAccount, Loan}
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.IsValid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	return nil
}

func (p Pot) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.Target.IsPositive() {
		return ErrInvalidTarget
	}
	if p.Current.IsNegative() {
		return ErrNegativeCurrent
	}
	return nil
}

// Rate returns the account interest rate, or def when unset.
func (a Account) Rate(def float64) float64 {
	if a.InterestRate == nil {
		return def
	}
	return a.InterestRate.InexactFloat64()
}

// Progress returns how full the pot is in percent, capped at 100.
func (p Pot) Progress() float64 {
	if !p.Target.IsPositive() {
		return 0
	}
	pct := p.Current.Div(p.Target).Mul(decimal.NewFromInt(100)).InexactFloat64()
	if pct > 100 {
		return 100
	}
	return pct
}

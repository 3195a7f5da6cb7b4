package reports

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// Seed account names. One expense account is added dynamically per distinct
// purchase category.
const (
	accountCash        = "Cash"
	accountReceivable  = "Accounts Receivable"
	accountInventory   = "Inventory"
	accountPayable     = "Accounts Payable"
	accountLoans       = "Loans Payable"
	accountEquity      = "Owner's Equity"
	accountRevenue     = "Revenue"
	expenseAccountRoot = "Expenses"
)

// balanceTolerance is the epsilon under which debits and credits count as
// equal.
var balanceTolerance = decimal.NewFromFloat(0.01)

type TrialBalanceAccount struct {
	Name   string            `json:"name"`
	Type   enums.AccountType `json:"type"`
	Debit  decimal.Decimal   `json:"debit"`
	Credit decimal.Decimal   `json:"credit"`
}

type ValidationIssue struct {
	Account  string `json:"account"`
	Severity string `json:"severity"` // "warning" or "error"
	Message  string `json:"message"`
}

type TrialBalanceReport struct {
	Accounts     []TrialBalanceAccount `json:"accounts"`
	TotalDebits  decimal.Decimal       `json:"total_debits"`
	TotalCredits decimal.Decimal       `json:"total_credits"`
	IsBalanced   bool                  `json:"is_balanced"`
	Validations  []ValidationIssue     `json:"validations,omitempty"`
}

type trialBalanceBuilder struct {
	order    []string
	accounts map[string]*TrialBalanceAccount
}

func newTrialBalanceBuilder() *trialBalanceBuilder {
	b := &trialBalanceBuilder{accounts: map[string]*TrialBalanceAccount{}}
	b.ensure(accountCash, enums.AccountTypeAsset)
	b.ensure(accountReceivable, enums.AccountTypeAsset)
	b.ensure(accountInventory, enums.AccountTypeAsset)
	b.ensure(accountPayable, enums.AccountTypeLiability)
	b.ensure(accountLoans, enums.AccountTypeLiability)
	b.ensure(accountEquity, enums.AccountTypeEquity)
	b.ensure(accountRevenue, enums.AccountTypeRevenue)
	return b
}

func (b *trialBalanceBuilder) ensure(name string, accountType enums.AccountType) *TrialBalanceAccount {
	if account, ok := b.accounts[name]; ok {
		return account
	}
	account := &TrialBalanceAccount{
		Name:   name,
		Type:   accountType,
		Debit:  decimal.Zero,
		Credit: decimal.Zero,
	}
	b.accounts[name] = account
	b.order = append(b.order, name)
	return account
}

func (b *trialBalanceBuilder) debit(name string, accountType enums.AccountType, amount decimal.Decimal) {
	account := b.ensure(name, accountType)
	account.Debit = account.Debit.Add(amount)
}

func (b *trialBalanceBuilder) credit(name string, accountType enums.AccountType, amount decimal.Decimal) {
	account := b.ensure(name, accountType)
	account.Credit = account.Credit.Add(amount)
}

// BuildTrialBalance posts every invoice as a debit/credit pair into the seed
// chart of accounts and checks that the books balance.
func BuildTrialBalance(invoices []models.Invoice, categoryNames map[string]string) *TrialBalanceReport {
	builder := newTrialBalanceBuilder()

	for _, inv := range activeInvoices(invoices) {
		amount := inv.Amount

		switch inv.Type {
		case enums.InvoiceTypePayment:
			// Org is the seller: revenue on the credit side, settlement on
			// the debit side.
			builder.credit(accountRevenue, enums.AccountTypeRevenue, amount)
			if inv.Status == enums.InvoiceStatusPaid {
				builder.debit(accountCash, enums.AccountTypeAsset, amount)
			} else {
				builder.debit(accountReceivable, enums.AccountTypeAsset, amount)
			}

		case enums.InvoiceTypePurchase:
			expense := expenseAccountName(inv, categoryNames)
			builder.debit(expense, enums.AccountTypeExpense, amount)
			if inv.Status == enums.InvoiceStatusPaid {
				builder.credit(accountCash, enums.AccountTypeAsset, amount)
			} else {
				builder.credit(accountPayable, enums.AccountTypeLiability, amount)
			}
		}
	}

	report := &TrialBalanceReport{
		Accounts:     make([]TrialBalanceAccount, 0, len(builder.order)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	// Seed accounts keep insertion order; dynamic expense accounts sort by
	// name after them.
	dynamic := builder.order[7:]
	sort.Strings(dynamic)

	for _, name := range builder.order {
		account := builder.accounts[name]
		report.Accounts = append(report.Accounts, *account)
		report.TotalDebits = report.TotalDebits.Add(account.Debit)
		report.TotalCredits = report.TotalCredits.Add(account.Credit)
	}

	report.IsBalanced = report.TotalDebits.Sub(report.TotalCredits).Abs().LessThan(balanceTolerance)
	report.Validations = validateAccounts(report.Accounts, report.IsBalanced)

	return report
}

func expenseAccountName(inv models.Invoice, categoryNames map[string]string) string {
	return fmt.Sprintf("%s: %s", expenseAccountRoot, categoryLabel(inv, categoryNames))
}

// validateAccounts flags semantically unusual balances. These are advisory;
// only an out-of-balance book is an error.
func validateAccounts(accounts []TrialBalanceAccount, balanced bool) []ValidationIssue {
	var issues []ValidationIssue

	if !balanced {
		issues = append(issues, ValidationIssue{
			Account:  "*",
			Severity: "error",
			Message:  "total debits and credits do not balance",
		})
	}

	for _, account := range accounts {
		net := account.Debit.Sub(account.Credit)
		switch account.Type {
		case enums.AccountTypeAsset:
			if net.IsNegative() {
				issues = append(issues, ValidationIssue{
					Account:  account.Name,
					Severity: "warning",
					Message:  "asset account carries a credit balance",
				})
			}
		case enums.AccountTypeLiability, enums.AccountTypeEquity, enums.AccountTypeRevenue:
			if net.IsPositive() {
				issues = append(issues, ValidationIssue{
					Account:  account.Name,
					Severity: "warning",
					Message:  "credit-normal account carries a debit balance",
				})
			}
		case enums.AccountTypeExpense:
			if net.IsNegative() {
				issues = append(issues, ValidationIssue{
					Account:  account.Name,
					Severity: "warning",
					Message:  "expense account carries a credit balance",
				})
			}
		}
	}

	return issues
}

package expense

import "github.com/botforce/unity/internal/domain/shared"

var (
	ErrExpenseNotBillable  = shared.NewDomainError("EXPENSE_NOT_BILLABLE", "Expense is not approved or has already been billed")
	ErrExpensesUnavailable = shared.NewDomainError("EXPENSES_UNAVAILABLE", "Some expenses are not approved or have already been billed")
	ErrNoExpensesSelected  = shared.NewDomainError("NO_EXPENSES_SELECTED", "At least one expense must be selected")
)

package domain

import "time"

// Expense documents how raised funds were spent.
type Expense struct {
	ID          string
	CampaignID  string
	AmountInt   int64
	Description string
	ReceiptKey  string
	ReceiptMIME string
	SpentOn     time.Time
	CreatedAt   time.Time
}

// ExpenseInput is the owner supplied part of an expense.
type ExpenseInput struct {
	AmountInt   int64     `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description" validate:"required,min=3,max=500"`
	SpentOn     time.Time `json:"spent_on" validate:"required"`
}

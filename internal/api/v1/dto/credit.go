package dto

// CreditBalanceDTO is the caller's derived credit balance
type CreditBalanceDTO struct {
	Remaining int `json:"remaining"`
	Used      int `json:"used"`
}

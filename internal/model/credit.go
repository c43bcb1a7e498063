package model

import "time"

// CreditPackage is a catalog item: a bundle of credits sold at a price.
type CreditPackage struct {
	CreditPackageID string    `db:"id" json:"credit_package_id"`
	Name            string    `db:"name" json:"name"`
	CreditAmount    int       `db:"credit_amount" json:"credit_amount"`
	Price           float64   `db:"price" json:"price"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// CreditPurchase is an immutable purchase record. PurchasedCredits is copied
// from the package at purchase time so later catalog edits never change the
// ledger. Rows are append-only; never updated or deleted.
type CreditPurchase struct {
	CreditPurchaseID string    `db:"id" json:"credit_purchase_id"`
	UserID           string    `db:"user_id" json:"user_id"`
	CreditPackageID  string    `db:"credit_package_id" json:"credit_package_id"`
	PurchasedCredits int       `db:"purchased_credits" json:"purchased_credits"`
	PricePaid        float64   `db:"price_paid" json:"price_paid"`
	PurchasedAt      time.Time `db:"purchased_at" json:"purchased_at"`
}

// CreditBalance is the derived ledger view for a user: purchases minus
// active bookings.
type CreditBalance struct {
	Remaining int `json:"remaining"`
	Used      int `json:"used"`
}

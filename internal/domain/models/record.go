package models

import "time"

// BillingRecord is one electricity bill for one meter in one calendar month.
//
// The (UserNumber, Month, Year) triple is the business key: the application
// allows at most one record per triple, enforced by a duplicate check right
// before every insert. The store itself carries no uniqueness constraint.
type BillingRecord struct {
	ID         string    `bson:"-" json:"id"`
	UserNumber string    `bson:"user_number" json:"user_number"`
	MeterCode  string    `bson:"meter_code" json:"meter_code"`
	Month      int       `bson:"month" json:"month"`
	Year       int       `bson:"year" json:"year"`
	Usage      float64   `bson:"electricity_usage" json:"electricity_usage"`
	TotalCost  float64   `bson:"total_with_vat" json:"total_with_vat"`
	FtRate     float64   `bson:"ft_rate" json:"ft_rate"`
	CreatedBy  string    `bson:"created_by" json:"created_by"`
	RecordedAt time.Time `bson:"record_date" json:"record_date"`
}

// Period returns the billing cycle this record belongs to.
func (r BillingRecord) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

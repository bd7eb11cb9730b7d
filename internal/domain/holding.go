package domain

import "time"

// ShareHolding is one holder's position in one property.
// RentDebt is the per-share accumulator value already settled against the holding;
// Unclaimed is rent settled at a later purchase but not yet withdrawn.
type ShareHolding struct {
	PropertyID uint64    `gorm:"column:property_id;primaryKey;autoIncrement:false" json:"property_id"`
	Holder     string    `gorm:"column:holder;type:varchar(42);primaryKey" json:"holder"`
	Shares     int64     `gorm:"column:shares;not null;default:0" json:"shares"`
	RentDebt   Wei       `gorm:"column:rent_debt;type:varchar(80);not null" json:"rent_debt"`
	Unclaimed  Wei       `gorm:"column:unclaimed;type:varchar(80);not null" json:"unclaimed"`
	CreatedAt  time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (ShareHolding) TableName() string {
	return "ShareHoldings"
}

// PendingVerification is the oracle-attested rent amount awaiting deposit.
type PendingVerification struct {
	PropertyID uint64    `gorm:"column:property_id;primaryKey;autoIncrement:false" json:"property_id"`
	Amount     Wei       `gorm:"column:amount;type:varchar(80);not null" json:"amount"`
	VerifiedBy string    `gorm:"column:verified_by;type:varchar(42);not null" json:"verified_by"`
	CreatedAt  time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (PendingVerification) TableName() string {
	return "PendingVerifications"
}

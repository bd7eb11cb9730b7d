package domain

import "time"

// Property is one tokenized building: its fixed share issuance and its rent accumulator.
type Property struct {
	PropertyID             uint64    `gorm:"column:property_id;primaryKey;autoIncrement:false" json:"property_id"`
	Name                   string    `gorm:"column:name;not null" json:"name"`
	URI                    string    `gorm:"column:uri;not null" json:"uri"`
	Manager                string    `gorm:"column:manager;type:varchar(42);not null;index" json:"manager"`
	TotalShares            int64     `gorm:"column:total_shares;not null" json:"total_shares"`
	SharesSold             int64     `gorm:"column:shares_sold;not null;default:0" json:"shares_sold"`
	PricePerShare          Wei       `gorm:"column:price_per_share;type:varchar(80);not null" json:"price_per_share"`
	FundsRaised            Wei       `gorm:"column:funds_raised;type:varchar(80);not null" json:"funds_raised"`
	IsFunded               bool      `gorm:"column:is_funded;not null;default:false" json:"is_funded"`
	RentBalance            Wei       `gorm:"column:rent_balance;type:varchar(80);not null" json:"rent_balance"`
	CumulativeRentPerShare Wei       `gorm:"column:cumulative_rent_per_share;type:varchar(80);not null" json:"cumulative_rent_per_share"`
	CreatedAt              time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt              time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Property) TableName() string {
	return "Properties"
}

// SharesRemaining is the unsold part of the issuance.
func (p Property) SharesRemaining() int64 {
	return p.TotalShares - p.SharesSold
}

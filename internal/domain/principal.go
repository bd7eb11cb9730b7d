package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Principal is an API identity: a wallet address, the capabilities the policy layer granted it,
// and the bcrypt hash of its key secret.
type Principal struct {
	KeyID        uuid.UUID      `gorm:"column:key_id;type:uuid;primaryKey" json:"key_id"`
	Address      string         `gorm:"column:address;type:varchar(42);not null;index" json:"address"`
	Label        string         `gorm:"column:label" json:"label"`
	SecretHash   string         `gorm:"column:secret_hash;not null" json:"-"`
	Capabilities datatypes.JSON `gorm:"column:capabilities;type:json;not null" json:"capabilities"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Principal) TableName() string {
	return "Principals"
}

func (p *Principal) BeforeCreate(tx *gorm.DB) error {
	if p.KeyID == uuid.Nil {
		p.KeyID = uuid.New()
	}
	return nil
}

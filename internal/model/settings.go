package model

import (
	"time"

	"github.com/google/uuid"
)

// SystemSettings is a singleton row created on first access. The
// allow-negative-stock flag is read once per operation and passed into the
// invoice engine rather than fetched mid-transaction.
type SystemSettings struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AllowNegativeStock bool      `gorm:"default:false" json:"allow_negative_stock"`
	ShopName           string    `gorm:"type:varchar(255)" json:"shop_name"`
	ShopAddress        string    `gorm:"type:text" json:"shop_address"`
	ShopPhone          string    `gorm:"type:varchar(50)" json:"shop_phone"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

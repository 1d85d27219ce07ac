package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusPending = "pending"

// Cake is a catalog item. CreatedAt is set once on insert and never touched
// by updates.
type Cake struct {
	ID          int             `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string          `gorm:"not null"                     json:"name"`
	Description string          `gorm:"not null"                     json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `gorm:"default:0"                    json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CartItem lives only in the session cart and is never persisted. Name, Price
// and ImageURL are snapshots of the cake at add-time.
type CartItem struct {
	CakeID   int             `json:"cake_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
	Quantity int             `json:"quantity"`
}

type Order struct {
	ID           int             `gorm:"primaryKey;autoIncrement"     json:"id"`
	CustomerName string          `gorm:"not null"                     json:"customer_name"`
	Phone        string          `gorm:"not null"                     json:"phone"`
	Address      string          `gorm:"not null"                     json:"address"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"total"`
	Status       string          `gorm:"not null;default:pending"     json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID"           json:"items"`
}

// OrderItem snapshots one cake inside an order. CakeName and Price are copied
// from the cart at order time and stay valid even if the cake is later edited
// or deleted from the catalog.
type OrderItem struct {
	ID       int             `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID  int             `gorm:"index;not null"               json:"order_id"`
	CakeID   int             `gorm:"not null"                     json:"cake_id"`
	CakeName string          `gorm:"not null"                     json:"cake_name"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"price"`
	Quantity int             `gorm:"not null"                     json:"quantity"`
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetslice/cakeshop/internal/models"
)

// ErrNotFound indicates the requested entity was not found.
var ErrNotFound = errors.New("not found")

// Store owns durable state: the cake catalog, orders and their line items.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) ListCakes(ctx context.Context) ([]models.Cake, error) {
	var cakes []models.Cake
	if err := s.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&cakes).Error; err != nil {
		return nil, err
	}
	return cakes, nil
}

func (s *Store) GetCake(ctx context.Context, id int) (*models.Cake, error) {
	var cake models.Cake
	if err := s.DB.WithContext(ctx).First(&cake, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cake, nil
}

func (s *Store) AddCake(ctx context.Context, cake *models.Cake) (int, error) {
	if err := s.DB.WithContext(ctx).Create(cake).Error; err != nil {
		return 0, err
	}
	return cake.ID, nil
}

// UpdateCake applies a partial update, keys are column names. An empty field
// set and an unknown id both report ErrNotFound, callers do not distinguish
// the two cases.
func (s *Store) UpdateCake(ctx context.Context, id int, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrNotFound
	}
	tx := s.DB.WithContext(ctx).
		Model(&models.Cake{}).
		Where("id = ?", id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCake removes a cake from the catalog. Order items referencing it keep
// their name/price snapshots, so no referential check is made.
func (s *Store) DeleteCake(ctx context.Context, id int) error {
	tx := s.DB.WithContext(ctx).Delete(&models.Cake{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOrder inserts the order, one line item per cart entry and the stock
// decrements as a single transaction. Stock has no floor and may go negative.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.CartItem) (int, error) {
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, it := range items {
			oi := models.OrderItem{
				OrderID:  order.ID,
				CakeID:   it.CakeID,
				CakeName: it.Name,
				Price:    it.Price,
				Quantity: it.Quantity,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			if err := tx.Model(&models.Cake{}).
				Where("id = ?", it.CakeID).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity)).Error; err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			order.Items = append(order.Items, oi)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus sets the status unconditionally, labels are free-form
// strings and are not validated against an enum.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int, status string) error {
	tx := s.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type PopularCake struct {
	CakeName  string `json:"cake_name"`
	TotalSold int64  `json:"total_sold"`
}

type Statistics struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalOrders   int64           `json:"total_orders"`
	PendingOrders int64           `json:"pending_orders"`
	TotalCakes    int64           `json:"total_cakes"`
	PopularCakes  []PopularCake   `json:"popular_cakes"`
}

func (s *Store) Statistics(ctx context.Context) (*Statistics, error) {
	db := s.DB.WithContext(ctx)
	stats := &Statistics{PopularCakes: []PopularCake{}}

	row := db.Model(&models.Order{}).Select("COALESCE(SUM(total), 0)").Row()
	if err := row.Scan(&stats.TotalSales); err != nil {
		return nil, fmt.Errorf("total sales: %w", err)
	}

	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("total orders: %w", err)
	}
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.StatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}
	if err := db.Model(&models.Cake{}).Count(&stats.TotalCakes).Error; err != nil {
		return nil, fmt.Errorf("total cakes: %w", err)
	}

	// Ties resolve by cake name ascending so the top list is deterministic.
	if err := db.Model(&models.OrderItem{}).
		Select("cake_name, SUM(quantity) AS total_sold").
		Group("cake_name").
		Order("total_sold DESC, cake_name ASC").
		Limit(5).
		Scan(&stats.PopularCakes).Error; err != nil {
		return nil, fmt.Errorf("popular cakes: %w", err)
	}

	return stats, nil
}

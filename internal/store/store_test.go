package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetslice/cakeshop/internal/models"
)

func newTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.Cake{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return New(db)
}

func testCake(name string, price float64, stock int) models.Cake {
	return models.Cake{
		Name:        name,
		Description: "test_description",
		Price:       decimal.NewFromFloat(price),
		Category:    "test_category",
		ImageURL:    "https://example.com/cake.jpg",
		Stock:       stock,
	}
}

func TestAddAndGetCake(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cake := testCake("chocolate", 88, 20)
	id, err := s.AddCake(ctx, &cake)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := s.GetCake(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "chocolate", got.Name)
	require.Equal(t, "test_description", got.Description)
	require.True(t, got.Price.Equal(decimal.NewFromInt(88)))
	require.Equal(t, "test_category", got.Category)
	require.Equal(t, "https://example.com/cake.jpg", got.ImageURL)
	require.Equal(t, 20, got.Stock)
	require.False(t, got.CreatedAt.IsZero())
}

func TestGetCakeNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCake(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCakesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := testCake("old", 10, 1)
	old.CreatedAt = time.Now().Add(-time.Hour)
	recent := testCake("recent", 20, 1)

	_, err := s.AddCake(ctx, &old)
	require.NoError(t, err)
	_, err = s.AddCake(ctx, &recent)
	require.NoError(t, err)

	cakes, err := s.ListCakes(ctx)
	require.NoError(t, err)
	require.Len(t, cakes, 2)
	require.Equal(t, "recent", cakes[0].Name)
	require.Equal(t, "old", cakes[1].Name)
}

func TestUpdateCakeSubset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cake := testCake("chocolate", 88, 20)
	id, err := s.AddCake(ctx, &cake)
	require.NoError(t, err)

	err = s.UpdateCake(ctx, id, map[string]any{
		"price": decimal.NewFromInt(95),
		"stock": 7,
	})
	require.NoError(t, err)

	got, err := s.GetCake(ctx, id)
	require.NoError(t, err)
	require.True(t, got.Price.Equal(decimal.NewFromInt(95)))
	require.Equal(t, 7, got.Stock)

	// untouched fields stay as inserted
	require.Equal(t, "chocolate", got.Name)
	require.Equal(t, "test_description", got.Description)
	require.Equal(t, "test_category", got.Category)
	require.Equal(t, "https://example.com/cake.jpg", got.ImageURL)
	require.Equal(t, cake.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestUpdateCakeNoFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cake := testCake("chocolate", 88, 20)
	id, err := s.AddCake(ctx, &cake)
	require.NoError(t, err)

	require.ErrorIs(t, s.UpdateCake(ctx, id, map[string]any{}), ErrNotFound)
}

func TestUpdateCakeUnknownID(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateCake(context.Background(), 42, map[string]any{"name": "ghost"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCake(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.DeleteCake(ctx, 42), ErrNotFound)

	cake := testCake("chocolate", 88, 20)
	id, err := s.AddCake(ctx, &cake)
	require.NoError(t, err)

	require.NoError(t, s.DeleteCake(ctx, id))

	_, err = s.GetCake(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	cakes, err := s.ListCakes(ctx)
	require.NoError(t, err)
	require.Len(t, cakes, 0)
}

func TestCreateOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cakeA := testCake("cakeA", 88, 20)
	cakeB := testCake("cakeB", 78, 15)
	idA, err := s.AddCake(ctx, &cakeA)
	require.NoError(t, err)
	idB, err := s.AddCake(ctx, &cakeB)
	require.NoError(t, err)

	order := models.Order{
		CustomerName: "test_customer",
		Phone:        "123456",
		Address:      "test_address",
		Total:        decimal.NewFromInt(254),
	}
	items := []models.CartItem{
		{CakeID: idA, Name: "cakeA", Price: decimal.NewFromInt(88), Quantity: 2},
		{CakeID: idB, Name: "cakeB", Price: decimal.NewFromInt(78), Quantity: 1},
	}

	orderID, err := s.CreateOrder(ctx, &order, items)
	require.NoError(t, err)
	require.NotZero(t, orderID)

	got, err := s.GetOrder(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, "test_customer", got.CustomerName)
	require.Equal(t, models.StatusPending, got.Status)
	require.True(t, got.Total.Equal(decimal.NewFromInt(254)))
	require.Len(t, got.Items, 2)
	require.Equal(t, "cakeA", got.Items[0].CakeName)
	require.Equal(t, 2, got.Items[0].Quantity)
	require.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(88)))

	gotA, err := s.GetCake(ctx, idA)
	require.NoError(t, err)
	require.Equal(t, 18, gotA.Stock)

	gotB, err := s.GetCake(ctx, idB)
	require.NoError(t, err)
	require.Equal(t, 14, gotB.Stock)
}

func TestCreateOrderAllowsNegativeStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cake := testCake("scarce", 10, 1)
	id, err := s.AddCake(ctx, &cake)
	require.NoError(t, err)

	order := models.Order{
		CustomerName: "test_customer",
		Phone:        "123456",
		Address:      "test_address",
		Total:        decimal.NewFromInt(50),
	}
	items := []models.CartItem{
		{CakeID: id, Name: "scarce", Price: decimal.NewFromInt(10), Quantity: 5},
	}

	_, err = s.CreateOrder(ctx, &order, items)
	require.NoError(t, err)

	got, err := s.GetCake(ctx, id)
	require.NoError(t, err)
	require.Equal(t, -4, got.Stock)
}

func TestCreateOrderRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cake := testCake("chocolate", 88, 20)
	id, err := s.AddCake(ctx, &cake)
	require.NoError(t, err)

	// make the order-item insert fail mid-transaction
	require.NoError(t, s.DB.Migrator().DropTable(&models.OrderItem{}))

	order := models.Order{
		CustomerName: "test_customer",
		Phone:        "123456",
		Address:      "test_address",
		Total:        decimal.NewFromInt(176),
	}
	items := []models.CartItem{
		{CakeID: id, Name: "chocolate", Price: decimal.NewFromInt(88), Quantity: 2},
	}

	_, err = s.CreateOrder(ctx, &order, items)
	require.Error(t, err)

	// nothing from the failed order survives: no order row, stock untouched
	var count int64
	require.NoError(t, s.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)

	got, err := s.GetCake(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 20, got.Stock)
}

func TestOrderItemsSurviveCakeDeletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cake := testCake("doomed", 30, 5)
	id, err := s.AddCake(ctx, &cake)
	require.NoError(t, err)

	order := models.Order{
		CustomerName: "test_customer",
		Phone:        "123456",
		Address:      "test_address",
		Total:        decimal.NewFromInt(30),
	}
	items := []models.CartItem{
		{CakeID: id, Name: "doomed", Price: decimal.NewFromInt(30), Quantity: 1},
	}
	orderID, err := s.CreateOrder(ctx, &order, items)
	require.NoError(t, err)

	require.NoError(t, s.DeleteCake(ctx, id))

	got, err := s.GetOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, "doomed", got.Items[0].CakeName)
	require.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(30)))
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		order := models.Order{
			CustomerName: name,
			Phone:        "123456",
			Address:      "test_address",
			Total:        decimal.NewFromInt(10),
		}
		_, err := s.CreateOrder(ctx, &order, nil)
		require.NoError(t, err)
	}

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "second", orders[0].CustomerName)
	require.Equal(t, "first", orders[1].CustomerName)
}

func TestUpdateOrderStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.UpdateOrderStatus(ctx, 42, "shipped"), ErrNotFound)

	order := models.Order{
		CustomerName: "test_customer",
		Phone:        "123456",
		Address:      "test_address",
		Total:        decimal.NewFromInt(10),
	}
	id, err := s.CreateOrder(ctx, &order, nil)
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrderStatus(ctx, id, "shipped"))

	got, err := s.GetOrder(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "shipped", got.Status)
}

func TestStatisticsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	require.True(t, stats.TotalSales.IsZero())
	require.Zero(t, stats.TotalOrders)
	require.Zero(t, stats.PendingOrders)
	require.Zero(t, stats.TotalCakes)
	require.Empty(t, stats.PopularCakes)
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cakes := make([]models.Cake, 0, 6)
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		cake := testCake(name, float64(10+i), 100)
		_, err := s.AddCake(ctx, &cake)
		require.NoError(t, err)
		cakes = append(cakes, cake)
	}

	// six distinct cakes sold, quantities 1..6, so the top five are f..b
	for i, cake := range cakes {
		order := models.Order{
			CustomerName: "test_customer",
			Phone:        "123456",
			Address:      "test_address",
			Total:        decimal.NewFromInt(int64(100 + i)),
		}
		items := []models.CartItem{
			{CakeID: cake.ID, Name: cake.Name, Price: cake.Price, Quantity: i + 1},
		}
		_, err := s.CreateOrder(ctx, &order, items)
		require.NoError(t, err)
	}
	require.NoError(t, s.UpdateOrderStatus(ctx, 1, "done"))

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)

	// 100+101+...+105
	require.True(t, stats.TotalSales.Equal(decimal.NewFromInt(615)))
	require.Equal(t, int64(6), stats.TotalOrders)
	require.Equal(t, int64(5), stats.PendingOrders)
	require.Equal(t, int64(6), stats.TotalCakes)

	require.Len(t, stats.PopularCakes, 5)
	require.Equal(t, "f", stats.PopularCakes[0].CakeName)
	require.Equal(t, int64(6), stats.PopularCakes[0].TotalSold)
	require.Equal(t, "b", stats.PopularCakes[4].CakeName)
	require.Equal(t, int64(2), stats.PopularCakes[4].TotalSold)
}

func TestStatisticsTieBreakByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order := models.Order{
		CustomerName: "test_customer",
		Phone:        "123456",
		Address:      "test_address",
		Total:        decimal.NewFromInt(60),
	}
	items := []models.CartItem{
		{CakeID: 1, Name: "zebra", Price: decimal.NewFromInt(10), Quantity: 3},
		{CakeID: 2, Name: "apple", Price: decimal.NewFromInt(10), Quantity: 3},
	}
	_, err := s.CreateOrder(ctx, &order, items)
	require.NoError(t, err)

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats.PopularCakes, 2)
	require.Equal(t, "apple", stats.PopularCakes[0].CakeName)
	require.Equal(t, "zebra", stats.PopularCakes[1].CakeName)
}

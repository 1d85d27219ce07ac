package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sweetslice/cakeshop/internal/models"
)

// Apply inserts the sample catalog on first run. It is a no-op when the cakes
// table already has rows.
func Apply(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Cake{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count cakes: %w", err)
	}
	if count > 0 {
		return nil
	}

	cakes := SampleCakes()
	if err := db.WithContext(ctx).Create(&cakes).Error; err != nil {
		return fmt.Errorf("insert sample cakes: %w", err)
	}
	return nil
}

func SampleCakes() []models.Cake {
	return []models.Cake{
		{
			Name:        "经典巧克力蛋糕",
			Description: "浓郁的巧克力口感，层层叠叠的美味",
			Price:       decimal.NewFromFloat(88.0),
			Category:    "巧克力系列",
			ImageURL:    "https://images.unsplash.com/photo-1578985545062-69928b1d9587",
			Stock:       20,
		},
		{
			Name:        "草莓奶油蛋糕",
			Description: "新鲜草莓搭配轻盈奶油，清新怡人",
			Price:       decimal.NewFromFloat(78.0),
			Category:    "水果系列",
			ImageURL:    "https://images.unsplash.com/photo-1565958011703-44f9829ba187",
			Stock:       15,
		},
		{
			Name:        "提拉米苏",
			Description: "意式经典，咖啡与芝士的完美融合",
			Price:       decimal.NewFromFloat(98.0),
			Category:    "芝士系列",
			ImageURL:    "https://images.unsplash.com/photo-1571877227200-a0d98ea607e9",
			Stock:       10,
		},
		{
			Name:        "抹茶慕斯蛋糕",
			Description: "清香抹茶，入口即化的慕斯口感",
			Price:       decimal.NewFromFloat(85.0),
			Category:    "抹茶系列",
			ImageURL:    "https://images.unsplash.com/photo-1563729784474-d77dbb933a9e",
			Stock:       12,
		},
		{
			Name:        "芒果千层蛋糕",
			Description: "层层薄饼，满满芒果果肉",
			Price:       decimal.NewFromFloat(92.0),
			Category:    "水果系列",
			ImageURL:    "https://images.unsplash.com/photo-1464349095431-e9a21285b5f3",
			Stock:       18,
		},
		{
			Name:        "黑森林蛋糕",
			Description: "德式经典，樱桃与巧克力的绝配",
			Price:       decimal.NewFromFloat(95.0),
			Category:    "巧克力系列",
			ImageURL:    "https://images.unsplash.com/photo-1606890737304-57a1ca8a5b62",
			Stock:       8,
		},
		{
			Name:        "红丝绒蛋糕",
			Description: "独特的红色外观，柔软细腻的口感",
			Price:       decimal.NewFromFloat(88.0),
			Category:    "芝士系列",
			ImageURL:    "https://images.unsplash.com/photo-1586788680434-30d324b2d46f",
			Stock:       14,
		},
		{
			Name:        "榴莲千层蛋糕",
			Description: "榴莲爱好者的天堂，浓郁榴莲香",
			Price:       decimal.NewFromFloat(108.0),
			Category:    "水果系列",
			ImageURL:    "https://images.unsplash.com/photo-1621303837174-89787a7d4729",
			Stock:       6,
		},
	}
}

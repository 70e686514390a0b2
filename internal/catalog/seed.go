package catalog

import (
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/shopspring/decimal"
)

func variants(pairs ...any) []domain.Variant {
	out := make([]domain.Variant, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Variant{
			Label: pairs[i].(string),
			Price: decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	return out
}

// SeedProducts is the launch catalog. migrations/000002 seeds the same rows.
func SeedProducts() []domain.Product {
	created := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	return []domain.Product{
		{
			ID: 1, Name: "Premium Cashew Nuts", Category: "nuts",
			Description: "Premium quality cashew nuts, carefully selected and vacuum-packed for maximum freshness.",
			Price:       decimal.NewFromInt(2850),
			ImageRef:    "https://images.pexels.com/photos/1295572/pexels-photo-1295572.jpeg",
			Variants:    variants("100g", 580, "250g", 1420, "500g", 2850, "1kg", 5600),
			Tags:        []string{"Premium", "No Added Sugar", "Vacuum Packed"},
			Stock:       120, Rating: 4.8, Bestseller: true, CreatedAt: created,
		},
		{
			ID: 2, Name: "Medjool Dates", Category: "dry-fruits",
			Description: "Premium Medjool dates, naturally sweet and rich in fibre.",
			Price:       decimal.NewFromInt(1890),
			ImageRef:    "https://images.pexels.com/photos/1132047/pexels-photo-1132047.jpeg",
			Variants:    variants("250g", 980, "500g", 1890, "1kg", 3680),
			Tags:        []string{"Premium", "Natural Sweetener", "No Added Sugar"},
			Stock:       80, Rating: 4.9, New: true, CreatedAt: created.AddDate(0, 2, 0),
		},
		{
			ID: 3, Name: "Roasted Almonds", Category: "nuts",
			Description: "Perfectly roasted almonds with a satisfying crunch.",
			Price:       decimal.NewFromInt(2340),
			ImageRef:    "https://images.pexels.com/photos/1446318/pexels-photo-1446318.jpeg",
			Variants:    variants("100g", 480, "250g", 1180, "500g", 2340, "1kg", 4580),
			Tags:        []string{"Roasted", "Crunchy", "Heart Healthy"},
			Stock:       95, Rating: 4.7, Bestseller: true, CreatedAt: created,
		},
		{
			ID: 4, Name: "Pumpkin Seeds", Category: "seeds",
			Description: "Nutritious roasted pumpkin seeds.",
			Price:       decimal.NewFromInt(1680),
			ImageRef:    "https://images.pexels.com/photos/1340116/pexels-photo-1340116.jpeg",
			Variants:    variants("100g", 350, "250g", 850, "500g", 1680),
			Tags:        []string{"Roasted", "Superfood", "High Protein"},
			Stock:       60, Rating: 4.6, CreatedAt: created,
		},
		{
			ID: 5, Name: "Organic Turmeric Powder", Category: "herbs",
			Description: "Premium organic turmeric powder, freshly ground.",
			Price:       decimal.NewFromInt(890),
			ImageRef:    "https://images.pexels.com/photos/1024240/pexels-photo-1024240.jpeg",
			Variants:    variants("50g", 290, "100g", 480, "250g", 890),
			Tags:        []string{"Organic", "Anti-inflammatory", "Freshly Ground"},
			Stock:       200, Rating: 4.9, CreatedAt: created,
		},
		{
			ID: 6, Name: "Mixed Berry Trail Mix", Category: "other",
			Description: "Delicious mixed berry trail mix.",
			Price:       decimal.NewFromInt(1980),
			ImageRef:    "https://images.pexels.com/photos/1327374/pexels-photo-1327374.jpeg",
			Variants:    variants("200g", 820, "500g", 1980, "1kg", 3880),
			Tags:        []string{"Trail Mix", "Antioxidant Rich", "Energy Boost"},
			Stock:       0, Rating: 4.5, New: true, CreatedAt: created.AddDate(0, 3, 0),
		},
		{
			ID: 101, Name: "Premium Dry Fruit Hamper", Category: "hampers",
			Description: "A luxurious collection of premium cashews, almonds, dates, and walnuts",
			Price:       decimal.NewFromInt(4500),
			ImageRef:    "https://images.pexels.com/photos/1132047/pexels-photo-1132047.jpeg",
			Variants:    variants("Hamper", 4500),
			Tags:        []string{"Gift"},
			Stock:       25, Rating: 4.9, CreatedAt: created,
		},
		{
			ID: 102, Name: "Healthy Snack Hamper", Category: "hampers",
			Description: "Perfect for health-conscious friends and family",
			Price:       decimal.NewFromInt(3200),
			ImageRef:    "https://images.pexels.com/photos/1295572/pexels-photo-1295572.jpeg",
			Variants:    variants("Hamper", 3200),
			Tags:        []string{"Gift"},
			Stock:       25, Rating: 4.7, CreatedAt: created,
		},
		{
			ID: 103, Name: "Corporate Gift Box", Category: "hampers",
			Description: "Elegant presentation perfect for corporate gifting",
			Price:       decimal.NewFromInt(6800),
			ImageRef:    "https://images.pexels.com/photos/1446318/pexels-photo-1446318.jpeg",
			Variants:    variants("Hamper", 6800),
			Tags:        []string{"Gift", "Corporate"},
			Stock:       10, Rating: 4.8, CreatedAt: created,
		},
		{
			ID: 104, Name: "Festival Special Hamper", Category: "hampers",
			Description: "Celebrate festivals with this traditional assortment",
			Price:       decimal.NewFromInt(5500),
			ImageRef:    "https://images.pexels.com/photos/1327374/pexels-photo-1327374.jpeg",
			Variants:    variants("Hamper", 5500),
			Tags:        []string{"Gift", "Festival"},
			Stock:       15, Rating: 4.9, New: true, CreatedAt: created.AddDate(0, 1, 0),
		},
	}
}

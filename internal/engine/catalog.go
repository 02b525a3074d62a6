package engine

import (
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
)

// registerGifts builds the static gift catalog. Entries never change
// after startup.
func registerGifts() map[string]domain.Gift {
	gifts := []domain.Gift{
		{
			ID:        "rose",
			Name:      "Rose",
			Cost:      1,
			Animation: "rose_float",
			Category:  domain.GiftCategoryClassic,
		},
		{
			ID:        "heart",
			Name:      "Heart",
			Cost:      5,
			Animation: "heart_burst",
			Category:  domain.GiftCategoryClassic,
		},
		{
			ID:        "fireworks",
			Name:      "Fireworks",
			Cost:      250,
			Animation: "fireworks_sky",
			Category:  domain.GiftCategoryPremium,
		},
		{
			ID:        "sports-car",
			Name:      "Sports Car",
			Cost:      1200,
			Animation: "sports_car_drive",
			Category:  domain.GiftCategoryPremium,
		},
		{
			ID:        "rocket",
			Name:      "Rocket",
			Cost:      5000,
			Animation: "rocket_launch",
			Category:  domain.GiftCategoryPremium,
		},
		{
			ID:        "crown",
			Name:      "Crown",
			Cost:      20000,
			Animation: "crown_shine",
			Category:  domain.GiftCategoryEvent,
		},
	}

	catalog := make(map[string]domain.Gift, len(gifts))
	for _, g := range gifts {
		catalog[g.ID] = g
	}
	return catalog
}

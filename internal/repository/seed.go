package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "krishi/internal/errors"
	"krishi/internal/model"
)

// SeedUser is a user present at process start together with its password.
type SeedUser struct {
	User     model.User
	Password string
}

// DefaultSeedUsers returns the demo farmers. Every call returns fresh copies.
func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{
			User: model.User{
				ID:            "1",
				Name:          "Rajesh Kumar Gowda",
				Email:         "rajesh.gowda@gmail.com",
				Phone:         "+91 98765 43210",
				District:      "Mandya",
				FarmSize:      "12 acres",
				Experience:    "15 years",
				Language:      "Kannada",
				FarmType:      "Mixed Farming",
				MainCrops:     []string{"Sugarcane", "Rice", "Coconut"},
				Address:       "Village: Srirangapatna, Taluk: Mandya",
				Notifications: true,
				WeatherAlerts: true,
				MarketUpdates: true,
			},
			Password: "password123",
		},
		{
			User: model.User{
				ID:            "2",
				Name:          "Priya Sharma",
				Email:         "priya.sharma@gmail.com",
				Phone:         "+91 98765 43211",
				District:      "Mysore",
				FarmSize:      "8 acres",
				Experience:    "8 years",
				Language:      "English",
				FarmType:      "Organic Farming",
				MainCrops:     []string{"Coffee", "Cardamom", "Pepper"},
				Address:       "Village: Nanjangud, Taluk: Mysore",
				Notifications: true,
				WeatherAlerts: false,
				MarketUpdates: true,
			},
			Password: "password123",
		},
		{
			User: model.User{
				ID:            "3",
				Name:          "Kumar Reddy",
				Email:         "kumar.reddy@gmail.com",
				Phone:         "+91 98765 43212",
				District:      "Bangalore Rural",
				FarmSize:      "15 acres",
				Experience:    "20 years",
				Language:      "Kannada",
				FarmType:      "Commercial Farming",
				MainCrops:     []string{"Rice", "Ragi", "Vegetables"},
				Address:       "Village: Devanahalli, Taluk: Bangalore Rural",
				Notifications: false,
				WeatherAlerts: true,
				MarketUpdates: false,
			},
			Password: "password123",
		},
	}
}

// Seed inserts seeds that are not present yet and returns how many were created.
func Seed(ctx context.Context, repo UserRepository, seeds []SeedUser) (int, error) {
	created := 0
	for _, s := range seeds {
		err := repo.Insert(ctx, &s.User, s.Password)
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed user %s: %w", s.User.Email, err)
		}
		created++
	}
	return created, nil
}

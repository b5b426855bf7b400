package service

import (
	"context"

	"backend/internal/repository"
)

type UpdateSettingsRequest struct {
	AllowNegativeStock *bool   `json:"allow_negative_stock"`
	ShopName           *string `json:"shop_name"`
	ShopAddress        *string `json:"shop_address"`
	ShopPhone          *string `json:"shop_phone"`
}

type SettingsResponse struct {
	AllowNegativeStock bool   `json:"allow_negative_stock"`
	ShopName           string `json:"shop_name"`
	ShopAddress        string `json:"shop_address"`
	ShopPhone          string `json:"shop_phone"`
}

type SettingsService interface {
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) GetSettings(ctx context.Context) (SettingsResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return SettingsResponse{}, wrapInternal(err, "failed to fetch settings")
	}
	return SettingsResponse{
		AllowNegativeStock: settings.AllowNegativeStock,
		ShopName:           settings.ShopName,
		ShopAddress:        settings.ShopAddress,
		ShopPhone:          settings.ShopPhone,
	}, nil
}

// UpdateSettings patches only the fields present in the request. A flipped
// allow_negative_stock takes effect for operations that start after the
// write; in-flight invoices keep the value they read at the start.
func (s *settingsService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return SettingsResponse{}, wrapInternal(err, "failed to fetch settings")
	}

	if req.AllowNegativeStock != nil {
		settings.AllowNegativeStock = *req.AllowNegativeStock
	}
	if req.ShopName != nil {
		settings.ShopName = *req.ShopName
	}
	if req.ShopAddress != nil {
		settings.ShopAddress = *req.ShopAddress
	}
	if req.ShopPhone != nil {
		settings.ShopPhone = *req.ShopPhone
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return SettingsResponse{}, wrapInternal(err, "failed to update settings")
	}
	return SettingsResponse{
		AllowNegativeStock: settings.AllowNegativeStock,
		ShopName:           settings.ShopName,
		ShopAddress:        settings.ShopAddress,
		ShopPhone:          settings.ShopPhone,
	}, nil
}

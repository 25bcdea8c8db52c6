package services

import (
	"context"
	"fmt"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationService encapsulates the business logic for saved locations.
type LocationService struct {
	repo *repository.LocationRepository
}

func NewLocationService(repo *repository.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

func (s *LocationService) CreateLocation(ctx context.Context, location *models.Location) (*models.Location, error) {
	if location.Name == "" {
		return nil, newValidationError("Invalid location: name is required")
	}
	if len(location.Point.Coordinates) != 2 {
		return nil, newValidationError("Invalid location: point must have longitude and latitude")
	}
	created, err := s.repo.CreateLocation(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %v", err)
	}
	return created, nil
}

func (s *LocationService) ListLocations(ctx context.Context, userID primitive.ObjectID) ([]models.Location, error) {
	return s.repo.GetUserLocations(ctx, userID)
}

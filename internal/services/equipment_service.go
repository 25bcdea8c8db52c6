package services

import (
	"context"
	"fmt"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EquipmentService encapsulates the business logic for user equipment.
type EquipmentService struct {
	repo *repository.EquipmentRepository
}

func NewEquipmentService(repo *repository.EquipmentRepository) *EquipmentService {
	return &EquipmentService{repo: repo}
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, equipment *models.Equipment) (*models.Equipment, error) {
	if equipment.Name == "" {
		return nil, newValidationError("Invalid equipment: name is required")
	}
	created, err := s.repo.CreateEquipment(ctx, equipment)
	if err != nil {
		return nil, fmt.Errorf("failed to create equipment: %v", err)
	}
	return created, nil
}

func (s *EquipmentService) ListEquipment(ctx context.Context, userID primitive.ObjectID) ([]models.Equipment, error) {
	return s.repo.GetUserEquipment(ctx, userID)
}

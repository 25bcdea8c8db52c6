package services

import (
	"context"

	"github.com/avelkov/stride/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// typeCatalog resolves activity type and subtype ids.
type typeCatalog interface {
	GetType(ctx context.Context, id int64) (*models.ActivityType, error)
	GetSubType(ctx context.Context, id int64) (*models.ActivitySubType, error)
}

// equipmentLookup resolves equipment ids.
type equipmentLookup interface {
	GetEquipmentByID(ctx context.Context, id primitive.ObjectID) (*models.Equipment, error)
}

// locationLookup resolves location ids.
type locationLookup interface {
	GetLocationByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
}

// GoalValidator checks a goal definition's internal consistency before it is
// persisted.
type GoalValidator struct {
	types     typeCatalog
	equipment equipmentLookup
	locations locationLookup
}

func NewGoalValidator(types typeCatalog, equipment equipmentLookup, locations locationLookup) *GoalValidator {
	return &GoalValidator{
		types:     types,
		equipment: equipment,
		locations: locations,
	}
}

// Validate returns nil when the goal definition is consistent, otherwise a
// structured failure describing the first violated rule.
func (v *GoalValidator) Validate(ctx context.Context, goal *models.Goal) *ValidationError {
	if goal.Target <= 0 {
		return newValidationError("Invalid goal: target must be positive")
	}
	if vErr := validateTypeAggregation(goal); vErr != nil {
		return vErr
	}
	if vErr := validateTemporalSetup(goal); vErr != nil {
		return vErr
	}
	return v.validateConstraints(ctx, goal)
}

// validateTypeAggregation enforces the type x aggregation compatibility table.
func validateTypeAggregation(goal *models.Goal) *ValidationError {
	switch goal.Type {
	case models.GoalTypeLocation:
		if goal.Aggregation != models.AggregationCount {
			return newValidationError("Invalid combination: Location goals only support count aggregation")
		}
	case models.GoalTypeManual:
		if goal.Aggregation != models.AggregationCount && goal.Aggregation != models.AggregationDuration {
			return newValidationError("Invalid combination: Manual goals only support count and duration aggregation")
		}
	case models.GoalTypeActivity:
		switch goal.Aggregation {
		case models.AggregationCount, models.AggregationDuration, models.AggregationTotalDistance,
			models.AggregationAvgDistance, models.AggregationMaxDistance:
		default:
			return newValidationError("Invalid combination: unknown aggregation %q", goal.Aggregation)
		}
	default:
		return newValidationError("Invalid goal type: %q", goal.Type)
	}
	return nil
}

// validateTemporalSetup enforces that exactly the temporal fields required by
// the goal's temporal type are set.
func validateTemporalSetup(goal *models.Goal) *ValidationError {
	switch goal.TemporalType {
	case models.TemporalYearly:
		if goal.Month != nil {
			return newValidationError("Invalid combination: Yearly goals should not have month set")
		}
		if goal.Week != nil {
			return newValidationError("Invalid combination: Yearly goals should not have week set")
		}
	case models.TemporalMonthly:
		if goal.Month == nil {
			return newValidationError("Invalid combination: Monthly goals must have month set")
		}
		if *goal.Month < 1 || *goal.Month > 12 {
			return newValidationError("Invalid combination: Month must be between 1 and 12")
		}
		if goal.Week != nil {
			return newValidationError("Invalid combination: Monthly goals should not have week set")
		}
	case models.TemporalWeekly:
		if goal.Week == nil {
			return newValidationError("Invalid combination: Weekly goals must have week set")
		}
		if goal.Month != nil {
			return newValidationError("Invalid combination: Weekly goals should not have month set")
		}
		if *goal.Week < 1 || *goal.Week > 53 {
			return newValidationError("Invalid combination: Week must be between 1 and 53")
		}
	default:
		return newValidationError("Invalid temporal type: %q", goal.TemporalType)
	}
	return nil
}

// validateConstraints checks constraint well-formedness and that every
// referenced id exists.
func (v *GoalValidator) validateConstraints(ctx context.Context, goal *models.Goal) *ValidationError {
	c := goal.Constraints

	if c.TypeID != nil {
		mainType, err := v.types.GetType(ctx, *c.TypeID)
		if err != nil {
			logrus.WithError(err).Error("Constraint validation failed on type lookup")
			return newDomainError("Failed to resolve activity type %d", *c.TypeID)
		}
		if mainType == nil {
			return newValidationError("Invalid constraints: activity type %d not found", *c.TypeID)
		}
	}

	if c.TypeID == nil && c.SubTypeID != nil {
		return newValidationError("Invalid constraints: sub_type_id provided without type_id")
	}

	if c.TypeID != nil && c.SubTypeID != nil {
		subType, err := v.types.GetSubType(ctx, *c.SubTypeID)
		if err != nil {
			logrus.WithError(err).Error("Constraint validation failed on subtype lookup")
			return newDomainError("Failed to resolve activity subtype %d", *c.SubTypeID)
		}
		if subType == nil {
			return newValidationError("Invalid constraints: activity subtype %d not found", *c.SubTypeID)
		}
		if subType.TypeID != *c.TypeID {
			return newValidationError("Invalid constraints: subtype %d does not belong to type %d", *c.SubTypeID, *c.TypeID)
		}
	}

	for _, equipmentID := range c.EquipmentIDs {
		equipment, err := v.equipment.GetEquipmentByID(ctx, equipmentID)
		if err != nil {
			logrus.WithError(err).Error("Constraint validation failed on equipment lookup")
			return newDomainError("Failed to resolve equipment %s", equipmentID.Hex())
		}
		if equipment == nil || equipment.UserID != goal.UserID {
			return newValidationError("Invalid constraints: equipment %s not found", equipmentID.Hex())
		}
	}

	if c.LocationID != nil {
		if goal.Type != models.GoalTypeLocation {
			return newValidationError("Location constraints can only be set for location goals")
		}
		location, err := v.locations.GetLocationByID(ctx, *c.LocationID)
		if err != nil {
			logrus.WithError(err).Error("Constraint validation failed on location lookup")
			return newDomainError("Failed to resolve location %s", c.LocationID.Hex())
		}
		if location == nil || location.UserID != goal.UserID {
			return newValidationError("Invalid constraints: location %s not found", c.LocationID.Hex())
		}
	}
	if goal.Type == models.GoalTypeLocation && c.LocationID == nil {
		return newValidationError("Location goals must have the location_id constraint set")
	}

	return nil
}

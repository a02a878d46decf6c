package repositories

import (
	"context"
	"time"

	"lifeline/models"
	"lifeline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type HospitalRepository struct {
	collection *mongo.Collection
}

func NewHospitalRepository(database *mongo.Database) *HospitalRepository {
	return &HospitalRepository{
		collection: database.Collection("hospitals"),
	}
}

func (hr *HospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	now := time.Now()
	hospital.CreatedAt = now
	hospital.UpdatedAt = now

	_, err := hr.collection.InsertOne(ctx, hospital)
	if err != nil {
		logrus.Errorf("Failed to create hospital: %v", err)
		return utils.NewDatabaseError("create hospital", err)
	}

	return nil
}

func (hr *HospitalRepository) GetByID(ctx context.Context, id string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := hr.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hospital)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewHospitalNotFoundError()
		}
		logrus.Errorf("Failed to get hospital %s: %v", id, err)
		return nil, utils.NewDatabaseError("get hospital", err)
	}

	return &hospital, nil
}

func (hr *HospitalRepository) ListActive(ctx context.Context) ([]models.Hospital, error) {
	cursor, err := hr.collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, utils.NewDatabaseError("list hospitals", err)
	}
	defer cursor.Close(ctx)

	var hospitals []models.Hospital
	if err := cursor.All(ctx, &hospitals); err != nil {
		return nil, utils.NewDatabaseError("decode hospitals", err)
	}

	return hospitals, nil
}

func bedField(bedType string) (string, error) {
	switch bedType {
	case models.BedTypeICU:
		return "beds.icu", nil
	case models.BedTypeEmergency:
		return "beds.emergency", nil
	default:
		return "", utils.NewBadRequestError("unknown bed type: " + bedType)
	}
}

// ReserveBed decrements the available counter for a bed type only while it
// is positive. Concurrent reservations for the last bed resolve to exactly
// one winner; losers get ErrNoBedsAvailable and try the next hospital.
func (hr *HospitalRepository) ReserveBed(ctx context.Context, hospitalID, bedType string) error {
	field, err := bedField(bedType)
	if err != nil {
		return err
	}

	result, err := hr.collection.UpdateOne(ctx, bson.M{
		"_id":                hospitalID,
		field + ".available": bson.M{"$gt": 0},
	}, bson.M{
		"$inc": bson.M{field + ".available": -1},
		"$set": bson.M{"beds.lastUpdated": time.Now(), "updatedAt": time.Now()},
	})
	if err != nil {
		logrus.Errorf("Failed to reserve %s bed at hospital %s: %v", bedType, hospitalID, err)
		return utils.NewDatabaseError("reserve bed", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := hr.GetByID(ctx, hospitalID); getErr != nil {
			return getErr
		}
		return utils.ErrNoBedsAvailable
	}
	return nil
}

// ReleaseBed gives a reserved bed back, capped at the type's total so
// repeated releases cannot inflate capacity.
func (hr *HospitalRepository) ReleaseBed(ctx context.Context, hospitalID, bedType string) error {
	field, err := bedField(bedType)
	if err != nil {
		return err
	}

	result, err := hr.collection.UpdateOne(ctx, bson.M{
		"_id": hospitalID,
		"$expr": bson.M{
			"$lt": bson.A{"$" + field + ".available", "$" + field + ".total"},
		},
	}, bson.M{
		"$inc": bson.M{field + ".available": 1},
		"$set": bson.M{"beds.lastUpdated": time.Now(), "updatedAt": time.Now()},
	})
	if err != nil {
		logrus.Errorf("Failed to release %s bed at hospital %s: %v", bedType, hospitalID, err)
		return utils.NewDatabaseError("release bed", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := hr.GetByID(ctx, hospitalID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// UpdateBedAvailability sets the available count for a bed type directly,
// rejected when the count exceeds the type's configured total.
func (hr *HospitalRepository) UpdateBedAvailability(ctx context.Context, hospitalID, bedType string, available int) error {
	if available < 0 {
		return utils.NewBadRequestError("available beds cannot be negative")
	}

	field, err := bedField(bedType)
	if err != nil {
		return err
	}

	result, err := hr.collection.UpdateOne(ctx, bson.M{
		"_id":            hospitalID,
		field + ".total": bson.M{"$gte": available},
	}, bson.M{
		"$set": bson.M{
			field + ".available": available,
			"beds.lastUpdated":   time.Now(),
			"updatedAt":          time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to update %s beds at hospital %s: %v", bedType, hospitalID, err)
		return utils.NewDatabaseError("update bed availability", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := hr.GetByID(ctx, hospitalID); getErr != nil {
			return getErr
		}
		return utils.NewBadRequestError("available beds exceed total capacity")
	}
	return nil
}

package repositories

import (
	"context"
	"time"

	"lifeline/models"
	"lifeline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AmbulanceRepository struct {
	collection *mongo.Collection
}

func NewAmbulanceRepository(database *mongo.Database) *AmbulanceRepository {
	return &AmbulanceRepository{
		collection: database.Collection("ambulances"),
	}
}

func (ar *AmbulanceRepository) Create(ctx context.Context, ambulance *models.Ambulance) error {
	now := time.Now()
	ambulance.CreatedAt = now
	ambulance.UpdatedAt = now

	_, err := ar.collection.InsertOne(ctx, ambulance)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("vehicle number already registered")
		}
		logrus.Errorf("Failed to create ambulance: %v", err)
		return utils.NewDatabaseError("create ambulance", err)
	}

	return nil
}

func (ar *AmbulanceRepository) GetByID(ctx context.Context, id string) (*models.Ambulance, error) {
	var ambulance models.Ambulance
	err := ar.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ambulance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewAmbulanceNotFoundError()
		}
		logrus.Errorf("Failed to get ambulance %s: %v", id, err)
		return nil, utils.NewDatabaseError("get ambulance", err)
	}

	return &ambulance, nil
}

func (ar *AmbulanceRepository) ListAvailable(ctx context.Context) ([]models.Ambulance, error) {
	cursor, err := ar.collection.Find(ctx, bson.M{
		"status":   models.AmbulanceStatusAvailable,
		"isActive": true,
	})
	if err != nil {
		return nil, utils.NewDatabaseError("list available ambulances", err)
	}
	defer cursor.Close(ctx)

	var ambulances []models.Ambulance
	if err := cursor.All(ctx, &ambulances); err != nil {
		return nil, utils.NewDatabaseError("decode available ambulances", err)
	}

	return ambulances, nil
}

// Claim atomically takes an available ambulance for an emergency. The filter
// requires status "available", so of any number of concurrent dispatchers at
// most one wins; the rest get ErrAlreadyClaimed and move on to the next
// candidate.
func (ar *AmbulanceRepository) Claim(ctx context.Context, ambulanceID, emergencyID string) (*models.Ambulance, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ambulance models.Ambulance
	err := ar.collection.FindOneAndUpdate(ctx, bson.M{
		"_id":    ambulanceID,
		"status": models.AmbulanceStatusAvailable,
	}, bson.M{
		"$set": bson.M{
			"status":             models.AmbulanceStatusAssigned,
			"currentEmergencyId": emergencyID,
			"updatedAt":          time.Now(),
		},
	}, opts).Decode(&ambulance)

	if err == nil {
		return &ambulance, nil
	}
	if err != mongo.ErrNoDocuments {
		logrus.Errorf("Failed to claim ambulance %s: %v", ambulanceID, err)
		return nil, utils.NewDatabaseError("claim ambulance", err)
	}

	if _, getErr := ar.GetByID(ctx, ambulanceID); getErr != nil {
		return nil, getErr
	}
	return nil, utils.ErrAlreadyClaimed
}

// Release returns an engaged ambulance to the available pool, clears its
// emergency binding and counts the ride. Releasing an already-available
// ambulance is a no-op, which makes retried completions and cancellations
// safe.
func (ar *AmbulanceRepository) Release(ctx context.Context, ambulanceID string) error {
	engaged := []string{
		models.AmbulanceStatusAssigned,
		models.AmbulanceStatusEnRoute,
		models.AmbulanceStatusArrived,
		models.AmbulanceStatusTransporting,
	}

	result, err := ar.collection.UpdateOne(ctx, bson.M{
		"_id":    ambulanceID,
		"status": bson.M{"$in": engaged},
	}, bson.M{
		"$set": bson.M{
			"status":    models.AmbulanceStatusAvailable,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{"currentEmergencyId": ""},
		"$inc":   bson.M{"totalRides": 1},
	})
	if err != nil {
		logrus.Errorf("Failed to release ambulance %s: %v", ambulanceID, err)
		return utils.NewDatabaseError("release ambulance", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := ar.GetByID(ctx, ambulanceID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// UpdateStatus moves an engaged ambulance through its ride statuses. The
// filter binds the update to the emergency the ambulance is working, so a
// driver cannot report progress against somebody else's dispatch.
func (ar *AmbulanceRepository) UpdateStatus(ctx context.Context, ambulanceID, emergencyID, status string) error {
	result, err := ar.collection.UpdateOne(ctx, bson.M{
		"_id":                ambulanceID,
		"currentEmergencyId": emergencyID,
	}, bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to update ambulance %s status: %v", ambulanceID, err)
		return utils.NewDatabaseError("update ambulance status", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := ar.GetByID(ctx, ambulanceID); getErr != nil {
			return getErr
		}
		return utils.NewForbiddenError("ambulance is not assigned to this emergency")
	}
	return nil
}

func (ar *AmbulanceRepository) UpdateLocation(ctx context.Context, ambulanceID string, latitude, longitude float64, address string) error {
	result, err := ar.collection.UpdateOne(ctx, bson.M{"_id": ambulanceID}, bson.M{
		"$set": bson.M{
			"location": models.AmbulanceLocation{
				Latitude:    latitude,
				Longitude:   longitude,
				Address:     address,
				LastUpdated: time.Now(),
			},
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to update ambulance %s location: %v", ambulanceID, err)
		return utils.NewDatabaseError("update ambulance location", err)
	}

	if result.MatchedCount == 0 {
		return utils.NewAmbulanceNotFoundError()
	}
	return nil
}

func (ar *AmbulanceRepository) SetAvailability(ctx context.Context, ambulanceID, status string) error {
	result, err := ar.collection.UpdateOne(ctx, bson.M{
		"_id":                ambulanceID,
		"currentEmergencyId": bson.M{"$exists": false},
	}, bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		return utils.NewDatabaseError("set ambulance availability", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := ar.GetByID(ctx, ambulanceID); getErr != nil {
			return getErr
		}
		return utils.NewConflictError("ambulance has an active emergency")
	}
	return nil
}

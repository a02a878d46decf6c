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

type EmergencyRepository struct {
	collection *mongo.Collection
}

func NewEmergencyRepository(database *mongo.Database) *EmergencyRepository {
	return &EmergencyRepository{
		collection: database.Collection("emergencies"),
	}
}

func (er *EmergencyRepository) Create(ctx context.Context, emergency *models.Emergency) error {
	now := time.Now()
	emergency.CreatedAt = now
	emergency.UpdatedAt = now

	_, err := er.collection.InsertOne(ctx, emergency)
	if err != nil {
		logrus.Errorf("Failed to create emergency: %v", err)
		return utils.NewDatabaseError("create emergency", err)
	}

	return nil
}

func (er *EmergencyRepository) GetByID(ctx context.Context, id string) (*models.Emergency, error) {
	var emergency models.Emergency
	err := er.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&emergency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewEmergencyNotFoundError()
		}
		logrus.Errorf("Failed to get emergency %s: %v", id, err)
		return nil, utils.NewDatabaseError("get emergency", err)
	}

	return &emergency, nil
}

// Transition applies a status change as a single conditional write. The
// filter is keyed on the set of statuses the change is allowed from, so a
// concurrent transition or a terminal emergency loses the race atomically
// rather than clobbering state. The timeline entry is pushed in the same
// write, keeping the audit log in lockstep with the status.
func (er *EmergencyRepository) Transition(ctx context.Context, id string, update models.EmergencyUpdate) (*models.Emergency, error) {
	now := time.Now()

	entry := models.TimelineEntry{
		Status:    update.NewStatus,
		Timestamp: now,
		Message:   update.Message,
	}

	set := bson.M{
		"status":    update.NewStatus,
		"updatedAt": now,
	}

	switch update.NewStatus {
	case models.EmergencyStatusAmbulanceAssigned:
		set["ambulanceAssignedAt"] = now
	case models.EmergencyStatusAmbulanceArrived:
		set["ambulanceArrivedAt"] = now
	case models.EmergencyStatusCompleted, models.EmergencyStatusCancelled:
		set["completedAt"] = now
	}

	if update.Ambulance != nil {
		set["ambulanceId"] = update.Ambulance.AmbulanceID
		set["ambulanceDetails"] = update.Ambulance.Details
	}
	if update.Hospital != nil {
		set["hospitalId"] = update.Hospital.HospitalID
		set["hospitalDetails"] = update.Hospital.Details
		set["estimatedArrivalMins"] = update.Hospital.EstimatedArrivalMins
	}

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": update.AllowedFrom},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var emergency models.Emergency
	err := er.collection.FindOneAndUpdate(ctx, filter, bson.M{
		"$set":  set,
		"$push": bson.M{"timeline": entry},
	}, opts).Decode(&emergency)

	if err == nil {
		return &emergency, nil
	}
	if err != mongo.ErrNoDocuments {
		logrus.Errorf("Failed to transition emergency %s: %v", id, err)
		return nil, utils.NewDatabaseError("transition emergency", err)
	}

	// No document matched: either the emergency does not exist or its
	// current status disallows the transition. Distinguish the two.
	current, getErr := er.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, utils.NewInvalidTransitionError(current.Status, update.NewStatus)
}

// AppendNote records a timeline entry without changing the status. Used for
// informational milestones such as the hotline fallback. Rejected on
// terminal emergencies so closed timelines stay closed.
func (er *EmergencyRepository) AppendNote(ctx context.Context, id, message string) error {
	entry := models.TimelineEntry{
		Status:    "",
		Timestamp: time.Now(),
		Message:   message,
	}

	result, err := er.collection.UpdateOne(ctx, bson.M{
		"_id":    id,
		"status": bson.M{"$in": models.ActiveEmergencyStatuses()},
	}, bson.M{
		"$push": bson.M{"timeline": entry},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		logrus.Errorf("Failed to append note to emergency %s: %v", id, err)
		return utils.NewDatabaseError("append emergency note", err)
	}
	if result.MatchedCount == 0 {
		if _, getErr := er.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return utils.NewConflictError("emergency is no longer active")
	}
	return nil
}

// MarkAlertSent flips a write-once alert flag. Returns true only for the
// caller that performed the flip; retried fan-out sees false and skips.
func (er *EmergencyRepository) MarkAlertSent(ctx context.Context, id, flag string) (bool, error) {
	switch flag {
	case models.AlertContacts, models.AlertAmbulance, models.AlertHospital, models.AlertBloodBank:
	default:
		return false, utils.NewBadRequestError("unknown alert flag: " + flag)
	}

	field := "alertsSent." + flag
	result, err := er.collection.UpdateOne(ctx, bson.M{
		"_id": id,
		field: false,
	}, bson.M{
		"$set": bson.M{field: true, "updatedAt": time.Now()},
	})
	if err != nil {
		logrus.Errorf("Failed to mark alert %s for emergency %s: %v", flag, id, err)
		return false, utils.NewDatabaseError("mark alert sent", err)
	}

	if result.ModifiedCount == 1 {
		return true, nil
	}
	if result.MatchedCount == 0 {
		// Flag already true, or emergency missing. Missing is structural.
		if _, getErr := er.GetByID(ctx, id); getErr != nil {
			return false, getErr
		}
	}
	return false, nil
}

// SetHospital pins the destination hospital without changing status. The
// filter requires an active emergency with no hospital yet, so cancelled or
// completed records never gain a hospital after the fact and a retried
// pre-alert cannot overwrite an earlier assignment.
func (er *EmergencyRepository) SetHospital(ctx context.Context, id string, hospital models.AssignedHospital, message string) error {
	entry := models.TimelineEntry{
		Timestamp: time.Now(),
		Message:   message,
	}

	result, err := er.collection.UpdateOne(ctx, bson.M{
		"_id":        id,
		"status":     bson.M{"$in": models.ActiveEmergencyStatuses()},
		"hospitalId": bson.M{"$exists": false},
	}, bson.M{
		"$set": bson.M{
			"hospitalId":           hospital.HospitalID,
			"hospitalDetails":      hospital.Details,
			"estimatedArrivalMins": hospital.EstimatedArrivalMins,
			"updatedAt":            time.Now(),
		},
		"$push": bson.M{"timeline": entry},
	})
	if err != nil {
		logrus.Errorf("Failed to set hospital for emergency %s: %v", id, err)
		return utils.NewDatabaseError("set emergency hospital", err)
	}
	if result.MatchedCount == 0 {
		current, getErr := er.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if current.HospitalID != "" {
			return utils.NewConflictError("hospital already assigned")
		}
		return utils.NewConflictError("emergency is no longer active")
	}
	return nil
}

func (er *EmergencyRepository) SetInsurance(ctx context.Context, id string, insurance models.InsuranceSnapshot) error {
	result, err := er.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"insurance": insurance, "updatedAt": time.Now()},
	})
	if err != nil {
		logrus.Errorf("Failed to set insurance for emergency %s: %v", id, err)
		return utils.NewDatabaseError("set emergency insurance", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewEmergencyNotFoundError()
	}
	return nil
}

func (er *EmergencyRepository) SetEstimatedArrival(ctx context.Context, id string, minutes int) error {
	_, err := er.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"estimatedArrivalMins": minutes, "updatedAt": time.Now()},
	})
	if err != nil {
		return utils.NewDatabaseError("set estimated arrival", err)
	}
	return nil
}

func (er *EmergencyRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Emergency, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := er.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("list user emergencies", err)
	}
	defer cursor.Close(ctx)

	var emergencies []models.Emergency
	if err := cursor.All(ctx, &emergencies); err != nil {
		return nil, utils.NewDatabaseError("decode user emergencies", err)
	}

	return emergencies, nil
}

func (er *EmergencyRepository) ListActive(ctx context.Context) ([]models.Emergency, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := er.collection.Find(ctx, bson.M{
		"status": bson.M{"$in": models.ActiveEmergencyStatuses()},
	}, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("list active emergencies", err)
	}
	defer cursor.Close(ctx)

	var emergencies []models.Emergency
	if err := cursor.All(ctx, &emergencies); err != nil {
		return nil, utils.NewDatabaseError("decode active emergencies", err)
	}

	return emergencies, nil
}

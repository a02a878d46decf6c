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

type BloodRepository struct {
	banks    *mongo.Collection
	requests *mongo.Collection
}

func NewBloodRepository(database *mongo.Database) *BloodRepository {
	return &BloodRepository{
		banks:    database.Collection("blood_banks"),
		requests: database.Collection("blood_requests"),
	}
}

func (br *BloodRepository) CreateBank(ctx context.Context, bank *models.BloodBank) error {
	now := time.Now()
	bank.CreatedAt = now
	bank.UpdatedAt = now

	_, err := br.banks.InsertOne(ctx, bank)
	if err != nil {
		logrus.Errorf("Failed to create blood bank: %v", err)
		return utils.NewDatabaseError("create blood bank", err)
	}

	return nil
}

func (br *BloodRepository) GetBankByID(ctx context.Context, id string) (*models.BloodBank, error) {
	var bank models.BloodBank
	err := br.banks.FindOne(ctx, bson.M{"_id": id}).Decode(&bank)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewBloodBankNotFoundError()
		}
		logrus.Errorf("Failed to get blood bank %s: %v", id, err)
		return nil, utils.NewDatabaseError("get blood bank", err)
	}

	return &bank, nil
}

// ListBanksWithStock returns active banks holding at least one unit of the
// requested group.
func (br *BloodRepository) ListBanksWithStock(ctx context.Context, bloodGroup string) ([]models.BloodBank, error) {
	cursor, err := br.banks.Find(ctx, bson.M{
		"isActive":            true,
		"stock." + bloodGroup: bson.M{"$gt": 0},
	})
	if err != nil {
		return nil, utils.NewDatabaseError("list blood banks", err)
	}
	defer cursor.Close(ctx)

	var banks []models.BloodBank
	if err := cursor.All(ctx, &banks); err != nil {
		return nil, utils.NewDatabaseError("decode blood banks", err)
	}

	return banks, nil
}

// DebitUnits removes units of a blood group from a bank's stock, guarded so
// the count never goes negative. Losers of a concurrent debit on the last
// units get ErrInsufficientUnits.
func (br *BloodRepository) DebitUnits(ctx context.Context, bankID, bloodGroup string, units int) error {
	if units <= 0 {
		return utils.NewBadRequestError("units must be positive")
	}

	field := "stock." + bloodGroup
	result, err := br.banks.UpdateOne(ctx, bson.M{
		"_id": bankID,
		field: bson.M{"$gte": units},
	}, bson.M{
		"$inc": bson.M{field: -units},
		"$set": bson.M{"stockUpdated": time.Now(), "updatedAt": time.Now()},
	})
	if err != nil {
		logrus.Errorf("Failed to debit %d units of %s from bank %s: %v", units, bloodGroup, bankID, err)
		return utils.NewDatabaseError("debit blood units", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := br.GetBankByID(ctx, bankID); getErr != nil {
			return getErr
		}
		return utils.ErrInsufficientUnits
	}
	return nil
}

// CreditUnits returns units to a bank's stock, undoing a debit whose
// settlement lost a race.
func (br *BloodRepository) CreditUnits(ctx context.Context, bankID, bloodGroup string, units int) error {
	if units <= 0 {
		return utils.NewBadRequestError("units must be positive")
	}

	field := "stock." + bloodGroup
	result, err := br.banks.UpdateOne(ctx, bson.M{"_id": bankID}, bson.M{
		"$inc": bson.M{field: units},
		"$set": bson.M{"stockUpdated": time.Now(), "updatedAt": time.Now()},
	})
	if err != nil {
		logrus.Errorf("Failed to credit %d units of %s to bank %s: %v", units, bloodGroup, bankID, err)
		return utils.NewDatabaseError("credit blood units", err)
	}

	if result.MatchedCount == 0 {
		return utils.NewBloodBankNotFoundError()
	}
	return nil
}

func (br *BloodRepository) UpdateStock(ctx context.Context, bankID, bloodGroup string, units int) error {
	if units < 0 {
		return utils.NewBadRequestError("stock cannot be negative")
	}
	if !models.IsValidBloodGroup(bloodGroup) {
		return utils.NewBadRequestError("invalid blood group: " + bloodGroup)
	}

	result, err := br.banks.UpdateOne(ctx, bson.M{"_id": bankID}, bson.M{
		"$set": bson.M{
			"stock." + bloodGroup: units,
			"stockUpdated":        time.Now(),
			"updatedAt":           time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to update stock at bank %s: %v", bankID, err)
		return utils.NewDatabaseError("update blood stock", err)
	}

	if result.MatchedCount == 0 {
		return utils.NewBloodBankNotFoundError()
	}
	return nil
}

func (br *BloodRepository) CreateRequest(ctx context.Context, request *models.BloodRequest) error {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	_, err := br.requests.InsertOne(ctx, request)
	if err != nil {
		logrus.Errorf("Failed to create blood request: %v", err)
		return utils.NewDatabaseError("create blood request", err)
	}

	return nil
}

func (br *BloodRepository) GetRequestByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := br.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewBloodRequestNotFoundError()
		}
		logrus.Errorf("Failed to get blood request %s: %v", id, err)
		return nil, utils.NewDatabaseError("get blood request", err)
	}

	return &request, nil
}

// SetMatched attaches the ranked bank list to a pending request.
func (br *BloodRepository) SetMatched(ctx context.Context, requestID string, matched []models.MatchedBloodBank) error {
	result, err := br.requests.UpdateOne(ctx, bson.M{
		"_id":    requestID,
		"status": models.BloodRequestStatusPending,
	}, bson.M{
		"$set": bson.M{
			"status":            models.BloodRequestStatusMatched,
			"matchedBloodBanks": matched,
			"updatedAt":         time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to match blood request %s: %v", requestID, err)
		return utils.NewDatabaseError("match blood request", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := br.GetRequestByID(ctx, requestID); getErr != nil {
			return getErr
		}
		return utils.NewConflictError("blood request is not pending")
	}
	return nil
}

// Fulfil marks a request served by a specific bank. Only pending or matched
// requests qualify.
func (br *BloodRepository) Fulfil(ctx context.Context, requestID, bankID string) error {
	result, err := br.requests.UpdateOne(ctx, bson.M{
		"_id": requestID,
		"status": bson.M{"$in": []string{
			models.BloodRequestStatusPending,
			models.BloodRequestStatusMatched,
		}},
	}, bson.M{
		"$set": bson.M{
			"status":      models.BloodRequestStatusFulfilled,
			"fulfilledBy": bankID,
			"fulfilledAt": time.Now(),
			"updatedAt":   time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to fulfil blood request %s: %v", requestID, err)
		return utils.NewDatabaseError("fulfil blood request", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := br.GetRequestByID(ctx, requestID); getErr != nil {
			return getErr
		}
		return utils.NewConflictError("blood request already settled")
	}
	return nil
}

func (br *BloodRepository) CancelRequest(ctx context.Context, requestID, reason string) error {
	result, err := br.requests.UpdateOne(ctx, bson.M{
		"_id": requestID,
		"status": bson.M{"$in": []string{
			models.BloodRequestStatusPending,
			models.BloodRequestStatusMatched,
		}},
	}, bson.M{
		"$set": bson.M{
			"status":       models.BloodRequestStatusCancelled,
			"cancelReason": reason,
			"updatedAt":    time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to cancel blood request %s: %v", requestID, err)
		return utils.NewDatabaseError("cancel blood request", err)
	}

	if result.MatchedCount == 0 {
		if _, getErr := br.GetRequestByID(ctx, requestID); getErr != nil {
			return getErr
		}
		return utils.NewConflictError("blood request already settled")
	}
	return nil
}

func (br *BloodRepository) ListRequestsByUser(ctx context.Context, userID string, limit int64) ([]models.BloodRequest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := br.requests.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("list blood requests", err)
	}
	defer cursor.Close(ctx)

	var requests []models.BloodRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, utils.NewDatabaseError("decode blood requests", err)
	}

	return requests, nil
}

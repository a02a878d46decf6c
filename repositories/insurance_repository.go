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

type InsuranceRepository struct {
	collection *mongo.Collection
}

func NewInsuranceRepository(database *mongo.Database) *InsuranceRepository {
	return &InsuranceRepository{
		collection: database.Collection("insurance_policies"),
	}
}

func (ir *InsuranceRepository) Create(ctx context.Context, policy *models.InsurancePolicy) error {
	now := time.Now()
	policy.CreatedAt = now
	policy.UpdatedAt = now

	_, err := ir.collection.InsertOne(ctx, policy)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("policy number already registered")
		}
		logrus.Errorf("Failed to create insurance policy: %v", err)
		return utils.NewDatabaseError("create insurance policy", err)
	}

	return nil
}

func (ir *InsuranceRepository) GetByUserID(ctx context.Context, userID string) (*models.InsurancePolicy, error) {
	var policy models.InsurancePolicy
	err := ir.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&policy)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("no insurance policy on file")
		}
		logrus.Errorf("Failed to get insurance policy for user %s: %v", userID, err)
		return nil, utils.NewDatabaseError("get insurance policy", err)
	}

	return &policy, nil
}

func (ir *InsuranceRepository) SetStatus(ctx context.Context, policyID, status string) error {
	result, err := ir.collection.UpdateOne(ctx, bson.M{"_id": policyID}, bson.M{
		"$set": bson.M{
			"status":     status,
			"verifiedAt": time.Now(),
			"updatedAt":  time.Now(),
		},
	})
	if err != nil {
		logrus.Errorf("Failed to set insurance policy %s status: %v", policyID, err)
		return utils.NewDatabaseError("set insurance status", err)
	}

	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("insurance policy not found")
	}
	return nil
}

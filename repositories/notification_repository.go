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

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(database *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: database.Collection("notifications"),
	}
}

func (nr *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.CreatedAt = time.Now()

	_, err := nr.collection.InsertOne(ctx, notification)
	if err != nil {
		logrus.Errorf("Failed to record notification: %v", err)
		return utils.NewDatabaseError("record notification", err)
	}

	return nil
}

func (nr *NotificationRepository) ListByEmergency(ctx context.Context, emergencyID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := nr.collection.Find(ctx, bson.M{"emergencyId": emergencyID}, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("list notifications", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, utils.NewDatabaseError("decode notifications", err)
	}

	return notifications, nil
}

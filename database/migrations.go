package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
}

// migrationRecord tracks applied migrations
type migrationRecord struct {
	Version   int       `bson:"version"`
	AppliedAt time.Time `bson:"appliedAt"`
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Create emergencies collection with indexes",
		Up:          createEmergenciesCollection,
	},
	{
		Version:     2,
		Description: "Create ambulances collection with indexes",
		Up:          createAmbulancesCollection,
	},
	{
		Version:     3,
		Description: "Create hospitals collection with indexes",
		Up:          createHospitalsCollection,
	},
	{
		Version:     4,
		Description: "Create blood banks and blood requests collections with indexes",
		Up:          createBloodCollections,
	},
	{
		Version:     5,
		Description: "Create insurance policies collection with indexes",
		Up:          createInsuranceCollection,
	},
	{
		Version:     6,
		Description: "Create notifications collection with indexes",
		Up:          createNotificationsCollection,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	migrationsCol := db.Collection("migrations")

	for _, migration := range migrations {
		var record migrationRecord
		err := migrationsCol.FindOne(ctx, bson.M{"version": migration.Version}).Decode(&record)
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			return fmt.Errorf("failed to check migration %d: %w", migration.Version, err)
		}

		logrus.Infof("Applying migration %d: %s", migration.Version, migration.Description)

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = migrationsCol.InsertOne(ctx, migrationRecord{
			Version:   migration.Version,
			AppliedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func createEmergenciesCollection(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("emergencies")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "ambulanceId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := col.Indexes().CreateMany(ctx, indexes)
	return err
}

func createAmbulancesCollection(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("ambulances")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "vehicleNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "currentEmergencyId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := col.Indexes().CreateMany(ctx, indexes)
	return err
}

func createHospitalsCollection(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("hospitals")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "insuranceAccepted", Value: 1}}},
	}

	_, err := col.Indexes().CreateMany(ctx, indexes)
	return err
}

func createBloodCollections(db *mongo.Database) error {
	ctx := context.Background()

	banks := db.Collection("blood_banks")
	_, err := banks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "hospitalId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return err
	}

	requests := db.Collection("blood_requests")
	_, err = requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bloodGroup", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	})
	return err
}

func createInsuranceCollection(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("insurance_policies")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "policyNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := col.Indexes().CreateMany(ctx, indexes)
	return err
}

func createNotificationsCollection(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("notifications")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}

	_, err := col.Indexes().CreateMany(ctx, indexes)
	return err
}

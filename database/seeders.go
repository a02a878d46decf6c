package database

import (
	"context"
	"time"

	"lifeline/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Seeder represents a database seeder
type Seeder struct {
	Name        string
	Description string
	Seed        func(*mongo.Database) error
}

var seeders = []Seeder{
	{
		Name:        "demo_ambulances",
		Description: "Create demo ambulance fleet for development",
		Seed:        seedDemoAmbulances,
	},
	{
		Name:        "demo_hospitals",
		Description: "Create demo hospitals for development",
		Seed:        seedDemoHospitals,
	},
	{
		Name:        "demo_blood_banks",
		Description: "Create demo blood banks for development",
		Seed:        seedDemoBloodBanks,
	},
}

// RunSeeders executes all database seeders once
func RunSeeders(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedersCol := db.Collection("seeders")
	count, err := seedersCol.CountDocuments(ctx, bson.M{})
	if err == nil && count > 0 {
		logrus.Debug("Seeders already applied, skipping")
		return nil
	}

	for _, seeder := range seeders {
		logrus.Infof("Running seeder: %s", seeder.Name)
		if err := seeder.Seed(db); err != nil {
			return err
		}
		_, _ = seedersCol.InsertOne(ctx, bson.M{"name": seeder.Name, "appliedAt": time.Now()})
	}

	return nil
}

func seedDemoAmbulances(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("ambulances")

	now := time.Now()
	fleet := []models.Ambulance{
		{
			ID:            uuid.NewString(),
			VehicleNumber: "TS09UA1108",
			Type:          models.AmbulanceTypeBasic,
			Status:        models.AmbulanceStatusAvailable,
			Driver:        models.DriverInfo{Name: "Ravi Kumar", Phone: "+919800000001"},
			Location:      models.AmbulanceLocation{Latitude: 17.4100, Longitude: 78.4800, Address: "Banjara Hills", LastUpdated: now},
			Facilities:    models.AmbulanceFacilities{Oxygen: true, FirstAidKit: true, Stretcher: true, BloodPressureMonitor: true},
			Provider:      "108",
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			VehicleNumber: "TS10UB2209",
			Type:          models.AmbulanceTypeAdvanced,
			Status:        models.AmbulanceStatusAvailable,
			Driver:        models.DriverInfo{Name: "Sameer Ali", Phone: "+919800000002"},
			Location:      models.AmbulanceLocation{Latitude: 17.4380, Longitude: 78.4480, Address: "Jubilee Hills", LastUpdated: now},
			Facilities:    models.AmbulanceFacilities{Oxygen: true, Defibrillator: true, FirstAidKit: true, Stretcher: true, BloodPressureMonitor: true},
			Provider:      "private",
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			VehicleNumber: "TS11UC3310",
			Type:          models.AmbulanceTypeICU,
			Status:        models.AmbulanceStatusAvailable,
			Driver:        models.DriverInfo{Name: "Lakshmi Devi", Phone: "+919800000003"},
			Location:      models.AmbulanceLocation{Latitude: 17.3850, Longitude: 78.4867, Address: "Abids", LastUpdated: now},
			Facilities:    models.AmbulanceFacilities{Oxygen: true, Ventilator: true, Defibrillator: true, FirstAidKit: true, Stretcher: true, BloodPressureMonitor: true},
			Provider:      "private",
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	docs := make([]interface{}, len(fleet))
	for i, a := range fleet {
		docs[i] = a
	}

	_, err := col.InsertMany(ctx, docs)
	return err
}

func seedDemoHospitals(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("hospitals")

	now := time.Now()
	hospitals := []models.Hospital{
		{
			ID:      uuid.NewString(),
			Name:    "City General Hospital",
			Type:    "general",
			Contact: models.HospitalContact{Phone: "+914023451000", EmergencyPhone: "+914023451001"},
			Location: models.FacilityLocation{
				Latitude: 17.4062, Longitude: 78.4691,
				Address: "Somajiguda Circle", City: "Hyderabad", State: "Telangana", Pincode: "500082",
			},
			Facilities: models.HospitalFacilities{EmergencyWard: true, ICU: true, OperationTheater: true, BloodBank: true, Pharmacy: true, Diagnostics: true},
			Beds: models.BedAvailability{
				Total: 200, Available: 48,
				ICU:         models.BedCounter{Total: 20, Available: 5},
				Emergency:   models.BedCounter{Total: 30, Available: 12},
				LastUpdated: now,
			},
			InsuranceAccepted: []string{models.InsuranceProviderAyushmanBharat, models.InsuranceProviderAarogyasri, models.InsuranceProviderPrivate},
			IsActive:          true,
			IsGovernment:      true,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:      uuid.NewString(),
			Name:    "Sunrise Heart Institute",
			Type:    "specialty",
			Contact: models.HospitalContact{Phone: "+914023452000", EmergencyPhone: "+914023452001"},
			Location: models.FacilityLocation{
				Latitude: 17.4239, Longitude: 78.4738,
				Address: "Raj Bhavan Road", City: "Hyderabad", State: "Telangana", Pincode: "500463",
			},
			Facilities:  models.HospitalFacilities{EmergencyWard: true, ICU: true, OperationTheater: true, Pharmacy: true, Diagnostics: true},
			Specialties: []string{"cardiology", "neurology"},
			Beds: models.BedAvailability{
				Total: 120, Available: 20,
				ICU:         models.BedCounter{Total: 16, Available: 4},
				Emergency:   models.BedCounter{Total: 12, Available: 6},
				LastUpdated: now,
			},
			InsuranceAccepted: []string{models.InsuranceProviderPrivate},
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}

	docs := make([]interface{}, len(hospitals))
	for i, h := range hospitals {
		docs[i] = h
	}

	_, err := col.InsertMany(ctx, docs)
	return err
}

func seedDemoBloodBanks(db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("blood_banks")

	now := time.Now()
	banks := []models.BloodBank{
		{
			ID:      uuid.NewString(),
			Name:    "Red Cross Blood Bank",
			Contact: models.HospitalContact{Phone: "+914023453000", EmergencyPhone: "+914023453001"},
			Location: models.FacilityLocation{
				Latitude: 17.3930, Longitude: 78.4752,
				Address: "Vidyanagar", City: "Hyderabad", State: "Telangana", Pincode: "500044",
			},
			Stock: map[string]int{
				"A+": 12, "A-": 3, "B+": 15, "B-": 2,
				"O+": 20, "O-": 4, "AB+": 6, "AB-": 1,
			},
			StockUpdated: now,
			Is24x7:       true,
			Type:         "standalone",
			IsActive:     true,
			IsGovernment: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	docs := make([]interface{}, len(banks))
	for i, b := range banks {
		docs[i] = b
	}

	_, err := col.InsertMany(ctx, docs)
	return err
}

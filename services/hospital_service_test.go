package services

import (
	"context"
	"testing"

	"lifeline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHospitalRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an active hospital", func(t *testing.T) {
		store := newFakeHospitalStore()
		service := NewHospitalService(store)

		hospital, err := service.Register(ctx, &models.CreateHospitalRequest{
			Name:     "Apollo",
			Contact:  models.HospitalContact{Phone: "+914011111111", EmergencyPhone: "+914011111112"},
			Location: models.FacilityLocation{Latitude: 17.4100, Longitude: 78.4800, Address: "Jubilee Hills"},
			Beds: models.BedAvailability{
				ICU:       models.BedCounter{Total: 10, Available: 8},
				Emergency: models.BedCounter{Total: 20, Available: 15},
			},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, hospital.ID)
		assert.True(t, hospital.IsActive)
	})

	t.Run("rejects bed counters with available above total", func(t *testing.T) {
		service := NewHospitalService(newFakeHospitalStore())

		_, err := service.Register(ctx, &models.CreateHospitalRequest{
			Name:     "Apollo",
			Location: models.FacilityLocation{Latitude: 17.4100, Longitude: 78.4800},
			Beds: models.BedAvailability{
				ICU: models.BedCounter{Total: 5, Available: 9},
			},
		})
		require.Error(t, err)
	})

	t.Run("rejects negative bed counters", func(t *testing.T) {
		service := NewHospitalService(newFakeHospitalStore())

		_, err := service.Register(ctx, &models.CreateHospitalRequest{
			Name:     "Apollo",
			Location: models.FacilityLocation{Latitude: 17.4100, Longitude: 78.4800},
			Beds: models.BedAvailability{
				Emergency: models.BedCounter{Total: 5, Available: -1},
			},
		})
		require.Error(t, err)
	})
}

func TestHospitalNearby(t *testing.T) {
	ctx := context.Background()

	t.Run("returns hospitals within the radius nearest first", func(t *testing.T) {
		store := newFakeHospitalStore(
			testHospital("far", 17.5000, 78.5800, 5, 10),
			testHospital("near", 17.4150, 78.4850, 5, 10),
			testHospital("remote", 19.0000, 80.0000, 5, 10),
		)
		service := NewHospitalService(store)

		ranked, err := service.Nearby(ctx, 17.4100, 78.4800, 20)
		require.NoError(t, err)
		require.Len(t, ranked, 2)
		assert.Equal(t, "near", ranked[0].Item.ID)
		assert.Equal(t, "far", ranked[1].Item.ID)
	})

	t.Run("rejects invalid coordinates", func(t *testing.T) {
		service := NewHospitalService(newFakeHospitalStore())
		_, err := service.Nearby(ctx, 100, 78.48, 20)
		require.Error(t, err)
	})
}

func TestHospitalUpdateBeds(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the ward's available count", func(t *testing.T) {
		store := newFakeHospitalStore(testHospital("h1", 17.4100, 78.4800, 5, 10))
		service := NewHospitalService(store)

		err := service.UpdateBeds(ctx, "h1", &models.UpdateBedAvailabilityRequest{
			BedType:   models.BedTypeICU,
			Available: 2,
		})
		require.NoError(t, err)

		hospital, err := store.GetByID(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, 2, hospital.Beds.ICU.Available)
	})

	t.Run("rejects counts above capacity", func(t *testing.T) {
		store := newFakeHospitalStore(testHospital("h1", 17.4100, 78.4800, 5, 10))
		service := NewHospitalService(store)

		err := service.UpdateBeds(ctx, "h1", &models.UpdateBedAvailabilityRequest{
			BedType:   models.BedTypeICU,
			Available: 50,
		})
		require.Error(t, err)
	})
}

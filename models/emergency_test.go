package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Run("happy path is fully reachable in order", func(t *testing.T) {
		path := []string{
			EmergencyStatusTriggered,
			EmergencyStatusAmbulanceAssigned,
			EmergencyStatusAmbulanceEnRoute,
			EmergencyStatusAmbulanceArrived,
			EmergencyStatusPatientPicked,
			EmergencyStatusEnRouteHospital,
			EmergencyStatusReachedHospital,
			EmergencyStatusCompleted,
		}
		for i := 0; i < len(path)-1; i++ {
			assert.True(t, CanTransition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
		}
	})

	t.Run("optional hops can be skipped", func(t *testing.T) {
		assert.True(t, CanTransition(EmergencyStatusAmbulanceAssigned, EmergencyStatusAmbulanceArrived))
		assert.True(t, CanTransition(EmergencyStatusPatientPicked, EmergencyStatusReachedHospital))
	})

	t.Run("backward moves are rejected", func(t *testing.T) {
		assert.False(t, CanTransition(EmergencyStatusAmbulanceArrived, EmergencyStatusAmbulanceEnRoute))
		assert.False(t, CanTransition(EmergencyStatusReachedHospital, EmergencyStatusTriggered))
	})

	t.Run("completion only from reached hospital", func(t *testing.T) {
		assert.False(t, CanTransition(EmergencyStatusTriggered, EmergencyStatusCompleted))
		assert.False(t, CanTransition(EmergencyStatusPatientPicked, EmergencyStatusCompleted))
		assert.True(t, CanTransition(EmergencyStatusReachedHospital, EmergencyStatusCompleted))
	})

	t.Run("cancellation from every active status", func(t *testing.T) {
		for _, status := range ActiveEmergencyStatuses() {
			assert.True(t, CanTransition(status, EmergencyStatusCancelled), status)
		}
	})

	t.Run("terminal states accept nothing", func(t *testing.T) {
		for _, terminal := range []string{EmergencyStatusCompleted, EmergencyStatusCancelled} {
			assert.False(t, CanTransition(terminal, EmergencyStatusTriggered))
			assert.False(t, CanTransition(terminal, EmergencyStatusCancelled))
			assert.False(t, CanTransition(terminal, EmergencyStatusCompleted))
		}
	})

	t.Run("unknown status has no transitions", func(t *testing.T) {
		assert.False(t, CanTransition("bogus", EmergencyStatusCancelled))
	})
}

func TestTransitionSources(t *testing.T) {
	t.Run("ambulance assigned only from triggered", func(t *testing.T) {
		assert.Equal(t, []string{EmergencyStatusTriggered}, TransitionSources(EmergencyStatusAmbulanceAssigned))
	})

	t.Run("arrived reachable with or without en route hop", func(t *testing.T) {
		sources := TransitionSources(EmergencyStatusAmbulanceArrived)
		assert.ElementsMatch(t, []string{EmergencyStatusAmbulanceAssigned, EmergencyStatusAmbulanceEnRoute}, sources)
	})

	t.Run("cancelled reachable from every active status", func(t *testing.T) {
		sources := TransitionSources(EmergencyStatusCancelled)
		assert.ElementsMatch(t, ActiveEmergencyStatuses(), sources)
	})

	t.Run("triggered is unreachable", func(t *testing.T) {
		assert.Empty(t, TransitionSources(EmergencyStatusTriggered))
	})

	t.Run("unknown status is unreachable", func(t *testing.T) {
		assert.Empty(t, TransitionSources("bogus"))
	})
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(EmergencyStatusCompleted))
	assert.True(t, IsTerminalStatus(EmergencyStatusCancelled))
	for _, status := range ActiveEmergencyStatuses() {
		assert.False(t, IsTerminalStatus(status), status)
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBedTypeForEmergency(t *testing.T) {
	assert.Equal(t, BedTypeICU, BedTypeForEmergency(EmergencyTypeCardiac))
	assert.Equal(t, BedTypeICU, BedTypeForEmergency(EmergencyTypeStroke))
	assert.Equal(t, BedTypeEmergency, BedTypeForEmergency(EmergencyTypeAccident))
	assert.Equal(t, BedTypeEmergency, BedTypeForEmergency(EmergencyTypeBreathing))
	assert.Equal(t, BedTypeEmergency, BedTypeForEmergency(EmergencyTypeOther))
	assert.Equal(t, BedTypeEmergency, BedTypeForEmergency(""))
}

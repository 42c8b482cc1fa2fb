package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceByID(t *testing.T) {
	services := []Service{
		{ID: 1, Name: "Corte clásico"},
		{ID: 2, Name: "Corte y barba"},
	}

	t.Run("found", func(t *testing.T) {
		svc := ServiceByID(services, 2)
		if assert.NotNil(t, svc) {
			assert.Equal(t, "Corte y barba", svc.Name)
		}
	})

	t.Run("missing", func(t *testing.T) {
		assert.Nil(t, ServiceByID(services, 404))
	})
}

func TestWireShapes(t *testing.T) {
	// Field names must match the booking API contract exactly.
	appt := Appointment{ID: 7, Date: "2025-06-04", Time: "09:00:00", Service: 1,
		Name: "Ana", Email: "ana@example.com", Phone: "5512345678"}

	data, err := json.Marshal(appt)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"date":"2025-06-04","time":"09:00:00","service":1,
		"name":"Ana","email":"ana@example.com","phone":"5512345678"}`, string(data))

	var wh WorkingHours
	err = json.Unmarshal([]byte(`{"day":3,"start_time":"09:00:00","end_time":"17:00:00"}`), &wh)
	assert.NoError(t, err)
	assert.Equal(t, WorkingHours{Day: 3, StartTime: "09:00:00", EndTime: "17:00:00"}, wh)
}

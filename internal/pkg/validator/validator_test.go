package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type transitionBody struct {
	Action    string `json:"action" validate:"booking_action"`
	Reason    string `json:"reason" validate:"max=500"`
	ActorRole string `json:"actor_role" validate:"actor_role"`
}

func TestValidateBookingAction(t *testing.T) {
	assert.Nil(t, Validate(transitionBody{Action: "accept"}))
	assert.Nil(t, Validate(transitionBody{Action: "user_reject", ActorRole: "user"}))

	errs := Validate(transitionBody{Action: "delete"})
	assert.Contains(t, errs["action"], "Invalid action")

	errs = Validate(transitionBody{})
	assert.Contains(t, errs, "action")
}

func TestValidateActorRole(t *testing.T) {
	errs := Validate(transitionBody{Action: "accept", ActorRole: "admin"})
	assert.Equal(t, "Invalid actor role. Must be: provider or user", errs["actor_role"])
}

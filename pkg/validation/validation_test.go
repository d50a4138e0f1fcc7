package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagesite/pkg/models"
)

func validLead() models.LeadRequest {
	return models.LeadRequest{
		Name:    "Ana Diaz",
		Email:   "ana@example.com",
		Phone:   "(305) 555-0100",
		Issue:   "Spring snapped",
		ZipCode: "33101",
	}
}

func TestStruct_ValidLead(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Struct(validLead()))
}

func TestStruct_FieldMessages(t *testing.T) {
	t.Parallel()

	req := validLead()
	req.Email = "not-an-email"
	req.Phone = "555"
	req.ZipCode = "3310"
	req.Name = ""

	got := Struct(req)
	require.NotNil(t, got)
	assert.Equal(t, "Please enter a valid email address", got["email"])
	assert.Equal(t, "Please enter a valid phone number", got["phone"])
	assert.Equal(t, "Please enter a valid ZIP code", got["zipCode"])
	assert.Equal(t, "This field is required", got["name"])
	assert.NotContains(t, got, "issue")
}

func TestStruct_NestedFormData(t *testing.T) {
	t.Parallel()

	req := models.SubmitFormRequest{FormData: models.LeadFormData{
		Name:  "Bo",
		Email: "bo@",
		Phone: "3055550100",
	}}

	got := Struct(req)
	assert.Equal(t, map[string]string{"formData.email": "Please enter a valid email address"}, got)
}

func TestStruct_ZipPlusFour(t *testing.T) {
	t.Parallel()

	req := validLead()
	req.ZipCode = "33101-1234"
	assert.Nil(t, Struct(req))
}

func TestFieldErrors_NonValidatorError(t *testing.T) {
	t.Parallel()
	assert.Nil(t, FieldErrors(errors.New("eof")))
	assert.Nil(t, FieldErrors(nil))
}

func TestDigits(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "3055550100", Digits("+(305) 555-0100"))
}

func TestRegister(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())

	err := binding.Validator.ValidateStruct(&models.LeadRequest{
		Name:    "Ana Diaz",
		Email:   "ana@example.com",
		Phone:   "123",
		Issue:   "Spring snapped",
		ZipCode: "331",
	})
	assert.Equal(t, map[string]string{
		"phone":   "Please enter a valid phone number",
		"zipCode": "Please enter a valid ZIP code",
	}, FieldErrors(err))

	lead := validLead()
	assert.NoError(t, binding.Validator.ValidateStruct(&lead))
}

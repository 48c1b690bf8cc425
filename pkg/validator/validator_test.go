package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	FirstName       string `validate:"required,min=3,max=25"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,alphanum,min=3,max=30"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Gender          string `validate:"omitempty,oneof=Male Female male female"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(signupForm{
		FirstName:       "Tony",
		Email:           "tony@x.com",
		Password:        "Passw0rd1",
		ConfirmPassword: "Passw0rd1",
		Gender:          "male",
	})
	assert.NoError(t, err)
}

func TestValidate_FieldMessages(t *testing.T) {
	err := Validate(signupForm{
		FirstName:       "To",
		Email:           "not-an-email",
		Password:        "has spaces",
		ConfirmPassword: "different",
		Gender:          "other",
	})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "must be at least 3 characters", fields["FirstName"])
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must contain only letters and numbers", fields["Password"])
	assert.Equal(t, "must match Password", fields["ConfirmPassword"])
	assert.Contains(t, fields["Gender"], "must be one of")
}

func TestValidate_RequiredFields(t *testing.T) {
	err := Validate(signupForm{})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["FirstName"])
	assert.Equal(t, "is required", fields["Email"])
	assert.Equal(t, "is required", fields["Password"])

	// Optional gender stays silent when empty.
	assert.NotContains(t, fields, "Gender")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"firstName":"Tony","email":"tony@x.com","password":"Passw0rd1","confirmPassword":"Passw0rd1"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var form signupForm
	require.NoError(t, DecodeAndValidate(req, &form))
	assert.Equal(t, "Tony", form.FirstName)
	assert.Equal(t, "tony@x.com", form.Email)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var form signupForm
	err := DecodeAndValidate(req, &form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_InvalidFields(t *testing.T) {
	body := `{"firstName":"To","email":"nope","password":"x y","confirmPassword":"z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var form signupForm
	err := DecodeAndValidate(req, &form)
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields(), "Email")
}

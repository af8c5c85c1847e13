package validation

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&credentials{Email: "nope", Password: "123"})

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be between 6 and 72 characters long", d["password"])
}

func TestToDetailsRequired(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&credentials{})

	d := ToDetails(err)
	assert.Equal(t, "is required", d["email"])
	assert.Equal(t, "is required", d["password"])
}

func TestToDetailsNil(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}

func TestPasswordUpperBound(t *testing.T) {
	Init()
	long := credentials{Email: "a@x.com", Password: strings.Repeat("a", MaxPasswordLen+1)}
	assert.Contains(t, ToDetails(binding.Validator.ValidateStruct(&long)), "password")

	ok := credentials{Email: "a@x.com", Password: strings.Repeat("a", MaxPasswordLen)}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))
}

package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateRejectsNonNumericPricingValues(t *testing.T) {
	svc := NewService(nil)

	for _, value := range []string{"abc", "", "12.5.3"} {
		setting, err := svc.Update("claim_value_usd", value)
		assert.Nil(t, setting, "value %q", value)
		assert.Error(t, err, "value %q", value)
	}
}

func TestUpdateRejectsNonPositivePricingValues(t *testing.T) {
	svc := NewService(nil)

	for _, value := range []string{"0", "-5", "-0.01"} {
		setting, err := svc.Update("nctr_rate_usd", value)
		assert.Nil(t, setting, "value %q", value)
		assert.Error(t, err, "value %q", value)
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(rentalSubmitted.WithLabelValues("created"))
	IncRentalSubmitted("created")
	assert.Equal(t, before+1, testutil.ToFloat64(rentalSubmitted.WithLabelValues("created")))

	IncTransition("approved", "active")
	assert.Equal(t, float64(1), testutil.ToFloat64(rentalTransitions.WithLabelValues("approved", "active")))

	IncCredentialCheck("pickup", "consumed")
	assert.Equal(t, float64(1), testutil.ToFloat64(credentialChecks.WithLabelValues("pickup", "consumed")))

	ObserveHTTP("/api/v1/equipment", "GET", "200", 0.01)
	assert.Equal(t, 1, testutil.CollectAndCount(httpDuration))
}

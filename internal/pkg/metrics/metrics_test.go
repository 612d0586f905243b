package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistrationCounter(t *testing.T) {
	before := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("registered"))
	RegistrationsTotal.WithLabelValues("registered").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(RegistrationsTotal.WithLabelValues("registered")))
}

func TestHandlerExposesPortalMetrics(t *testing.T) {
	GenerationsTotal.WithLabelValues("quiz", "fallback").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 200, rec.Code)
	require.Contains(t, string(body), "portal_ai_generations_total")
}

package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordErrorPacket(t *testing.T) {
	before := testutil.ToFloat64(errorPackets.WithLabelValues("1", "true"))

	RecordErrorPacket(1, true)

	assert.Equal(t, before+1, testutil.ToFloat64(errorPackets.WithLabelValues("1", "true")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordTransfer("rrq", "ok")
	RecordValidation("ACK", "as expected")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tftp_server_transfers_total")
	assert.Contains(t, rec.Body.String(), "tftp_transfer_validations_total")
}

// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAndGauges(t *testing.T) {
	before := testutil.ToFloat64(pagesFetched.WithLabelValues("Recordings"))
	RecordPageFetch("Recordings")
	RecordPageFetch("Recordings")
	assert.Equal(t, before+2, testutil.ToFloat64(pagesFetched.WithLabelValues("Recordings")))

	SetVisibleRows(17)
	assert.Equal(t, 17.0, testutil.ToFloat64(visibleRows))

	SetRowsEnriched(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(rowsEnriched))

	failBefore := testutil.ToFloat64(fetchFailures.WithLabelValues("Device"))
	RecordFetchFailure("Device")
	assert.Equal(t, failBefore+1, testutil.ToFloat64(fetchFailures.WithLabelValues("Device")))
}

package metrics

import "time"

// RecordHitsFetched records the number of raw hits an adapter returned.
// This metric helps track per-engine yield and source activity.
func RecordHitsFetched(engine string, count int) {
	HitsFetchedTotal.WithLabelValues(engine).Add(float64(count))
}

// RecordLeadPersisted records one persistence outcome.
// Status should be "saved", "duplicate", or "error".
func RecordLeadPersisted(status string) {
	LeadsPersistedTotal.WithLabelValues(status).Inc()
}

// RecordExtraction records the result of one extraction pass.
// Method should be "pattern" or "ai".
func RecordExtraction(method string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	ExtractionTotal.WithLabelValues(method, status).Inc()
	ExtractionDuration.Observe(duration.Seconds())
}

// RecordDispatch records one adapter search pass.
func RecordDispatch(engine string, duration time.Duration) {
	DispatchDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordDispatchError records an error during adapter dispatch.
func RecordDispatchError(engine, errorType string) {
	DispatchErrors.WithLabelValues(engine, errorType).Inc()
}

// UpdateLeadsTotal updates the total count of leads in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateLeadsTotal(count int) {
	LeadsTotal.Set(float64(count))
}

// UpdateLeadSourcesTotal updates the total count of lead sources.
func UpdateLeadSourcesTotal(count int) {
	LeadSourcesTotal.Set(float64(count))
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch. This occurs
// when the adapter's snippet is long enough that fetching is unnecessary.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "insert_lead").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordHitsFetched(t *testing.T) {
	tests := []struct {
		name   string
		engine string
		count  int
	}{
		{name: "single hit", engine: "rss", count: 1},
		{name: "multiple hits", engine: "news_api", count: 10},
		{name: "zero hits", engine: "yelp", count: 0},
		{name: "empty engine name", engine: "", count: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordHitsFetched(tt.engine, tt.count)
			})
		})
	}
}

func TestRecordLeadPersisted(t *testing.T) {
	for _, status := range []string{"saved", "duplicate", "error"} {
		t.Run(status, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordLeadPersisted(status)
			})
		})
	}
}

func TestRecordExtraction(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		success bool
	}{
		{name: "pattern success", method: "pattern", success: true},
		{name: "ai success", method: "ai", success: true},
		{name: "ai failure", method: "ai", success: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordExtraction(tt.method, tt.success, 50*time.Millisecond)
			})
		})
	}
}

func TestRecordDispatch(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordDispatch("rss", 200*time.Millisecond)
		RecordDispatchError("rss", "fetch_failed")
	})
}

func TestContentFetchMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordContentFetchSuccess(time.Second, 4096)
		RecordContentFetchFailed(time.Second)
		RecordContentFetchSkipped()
	})
}

func TestGaugesAndDBMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		UpdateLeadsTotal(100)
		UpdateLeadSourcesTotal(12)
		RecordDBQuery("insert_lead", 5*time.Millisecond)
		UpdateDBConnectionStats(5, 10)
		RecordOperationDuration("persist_leads", 20*time.Millisecond)
	})
}

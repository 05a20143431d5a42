// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/kpi/alerts", "200"))
	RecordAPIRequest("GET", "/api/v1/kpi/alerts", "200", 20*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/kpi/alerts", "200"))

	if after-before != 1 {
		t.Errorf("api_requests_total grew by %v, want 1", after-before)
	}
}

func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+1 {
		t.Errorf("active = %v, want %v", got, start+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("active = %v, want %v", got, start)
	}
}

func TestRecordDatasetLoad(t *testing.T) {
	failures := testutil.ToFloat64(DatasetLoads.WithLabelValues("events", "failure"))

	RecordDatasetLoad("events", 1200, time.Second, nil)
	if got := testutil.ToFloat64(DatasetRows.WithLabelValues("events")); got != 1200 {
		t.Errorf("dataset_rows = %v, want 1200", got)
	}

	RecordDatasetLoad("events", 0, time.Second, errors.New("bucket unreachable"))
	if got := testutil.ToFloat64(DatasetRows.WithLabelValues("events")); got != 1200 {
		t.Errorf("failed load changed dataset_rows to %v", got)
	}
	if got := testutil.ToFloat64(DatasetLoads.WithLabelValues("events", "failure")); got != failures+1 {
		t.Errorf("failure count = %v, want %v", got, failures+1)
	}
}

func TestRecordReport(t *testing.T) {
	before := testutil.ToFloat64(ReportsGenerated.WithLabelValues("pdf"))
	RecordReport("pdf", 42, 300*time.Millisecond)
	if got := testutil.ToFloat64(ReportsGenerated.WithLabelValues("pdf")); got != before+1 {
		t.Errorf("reports_generated_total = %v", got)
	}

	errBefore := testutil.ToFloat64(ReportGenerationErrors.WithLabelValues("upload"))
	RecordReportError("upload")
	if got := testutil.ToFloat64(ReportGenerationErrors.WithLabelValues("upload")); got != errBefore+1 {
		t.Errorf("report_generation_errors_total = %v", got)
	}
}

func TestRecordStorageOp(t *testing.T) {
	before := testutil.ToFloat64(StorageErrors.WithLabelValues("s3", "put"))
	RecordStorageOp("s3", "put", time.Millisecond, nil)
	RecordStorageOp("s3", "put", time.Millisecond, errors.New("denied"))
	if got := testutil.ToFloat64(StorageErrors.WithLabelValues("s3", "put")); got != before+1 {
		t.Errorf("storage_errors_total = %v, want %v", got, before+1)
	}
}

func TestMetricGathering(t *testing.T) {
	RecordShortener("success")
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint %s: %s", p.Metric, p.Text)
	}
}

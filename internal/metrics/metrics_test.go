package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// value reads the current value of a counter or gauge.
func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func sampleReport(status Status) CycleReport {
	base := time.Date(2024, 3, 1, 12, 0, 59, 0, time.UTC)
	return CycleReport{
		ID:     "cycle-1",
		Status: status,
		Tasks:  13,
		Timings: CycleTimings{
			Dispatched:    base,
			BatchComplete: base.Add(800 * time.Millisecond),
			WriteComplete: base.Add(1100 * time.Millisecond),
		},
		RowsWritten: 212,
		TableRows:   map[string]int64{"order_book": 200, "clines": 2},
		UsedWeight:  map[string]int64{"spot": 30, "futures": 55},
	}
}

func TestCycleTimings(t *testing.T) {
	r := sampleReport(StatusOK)

	if got := r.Timings.FetchDuration(); got != 800*time.Millisecond {
		t.Errorf("FetchDuration() = %v, want 800ms", got)
	}
	if got := r.Timings.WriteDuration(); got != 300*time.Millisecond {
		t.Errorf("WriteDuration() = %v, want 300ms", got)
	}

	var aborted CycleTimings
	aborted.Dispatched = r.Timings.Dispatched
	aborted.BatchComplete = r.Timings.BatchComplete
	if got := aborted.WriteDuration(); got != 0 {
		t.Errorf("WriteDuration() without write = %v, want 0", got)
	}
}

func TestCycleReport_LogAttrs(t *testing.T) {
	r := sampleReport(StatusFetchFailed)
	r.FailedTasks = []string{"clines/BTCUSDT"}

	attrs := r.LogAttrs()
	if len(attrs)%2 != 0 {
		t.Fatalf("LogAttrs() returned odd length %d", len(attrs))
	}

	got := map[string]any{}
	for i := 0; i < len(attrs); i += 2 {
		got[attrs[i].(string)] = attrs[i+1]
	}
	if got["dispatched_ms"] != r.Timings.Dispatched.UnixMilli() {
		t.Errorf("dispatched_ms = %v", got["dispatched_ms"])
	}
	if got["batch_complete_ms"] != r.Timings.BatchComplete.UnixMilli() {
		t.Errorf("batch_complete_ms = %v", got["batch_complete_ms"])
	}
	if got["write_complete_ms"] != r.Timings.WriteComplete.UnixMilli() {
		t.Errorf("write_complete_ms = %v, want %d", got["write_complete_ms"], r.Timings.WriteComplete.UnixMilli())
	}
	if _, ok := got["failed_tasks"]; !ok {
		t.Error("failed_tasks missing")
	}
}

func TestCycleReport_LogAttrs_NoWrite(t *testing.T) {
	r := sampleReport(StatusFetchFailed)
	r.Timings.WriteComplete = time.Time{}

	attrs := r.LogAttrs()
	for i := 0; i < len(attrs); i += 2 {
		if attrs[i] == "write_complete_ms" {
			t.Errorf("write_complete_ms = %v, want omitted", attrs[i+1])
		}
	}
}

func TestPrometheus_ObserveCycle(t *testing.T) {
	p := NewPrometheus("")

	p.ObserveCycle(context.Background(), sampleReport(StatusOK))
	p.ObserveCycle(context.Background(), sampleReport(StatusOK))
	p.ObserveCycle(context.Background(), CycleReport{Status: StatusFetchFailed})
	p.SetWeightLimit(2400)

	if got := value(t, p.CyclesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("cycles_total{ok} = %v, want 2", got)
	}
	if got := value(t, p.CyclesTotal.WithLabelValues("fetch_failed")); got != 1 {
		t.Errorf("cycles_total{fetch_failed} = %v, want 1", got)
	}
	if got := value(t, p.RowsWritten.WithLabelValues("order_book")); got != 400 {
		t.Errorf("rows_written_total{order_book} = %v, want 400", got)
	}
	if got := value(t, p.UsedWeight.WithLabelValues("futures")); got != 55 {
		t.Errorf("used_weight{futures} = %v, want 55", got)
	}
	if got := value(t, p.WeightLimit); got != 2400 {
		t.Errorf("weight_limit = %v, want 2400", got)
	}
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus("")
	p.ObserveCycle(context.Background(), sampleReport(StatusOK))

	server := httptest.NewServer(p.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, name := range []string{
		"collector_cycle_fetch_seconds",
		"collector_cycle_write_seconds",
		"collector_cycles_total",
		"collector_rows_written_total",
		"collector_last_cycle_timestamp_seconds",
		"collector_binance_used_weight",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCloudWatch_ObserveCycle(t *testing.T) {
	fake := &fakeCloudWatch{}
	cw := newCloudWatch(fake, "", "collector-1", nil)

	cw.ObserveCycle(context.Background(), sampleReport(StatusWriteFailed))

	if len(fake.inputs) != 1 {
		t.Fatalf("PutMetricData calls = %d, want 1", len(fake.inputs))
	}
	in := fake.inputs[0]
	if *in.Namespace != DefaultCloudWatchNamespace {
		t.Errorf("Namespace = %q, want %q", *in.Namespace, DefaultCloudWatchNamespace)
	}

	values := map[string]float64{}
	for _, d := range in.MetricData {
		values[*d.MetricName] = *d.Value
		if len(d.Dimensions) != 1 || *d.Dimensions[0].Value != "collector-1" {
			t.Errorf("%s dimensions = %v", *d.MetricName, d.Dimensions)
		}
	}
	if values["CycleFailed"] != 1 {
		t.Errorf("CycleFailed = %v, want 1", values["CycleFailed"])
	}
	if values["RowsWritten"] != 212 {
		t.Errorf("RowsWritten = %v, want 212", values["RowsWritten"])
	}
	if values["FetchDuration"] != 0.8 {
		t.Errorf("FetchDuration = %v, want 0.8", values["FetchDuration"])
	}
}

func TestCloudWatch_ErrorIsLogged(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cw := newCloudWatch(&fakeCloudWatch{err: errors.New("throttled")}, "ns", "", logger)

	cw.ObserveCycle(context.Background(), sampleReport(StatusOK))

	if !strings.Contains(buf.String(), "throttled") {
		t.Errorf("log output = %q, want error logged", buf.String())
	}
}

func TestMulti(t *testing.T) {
	var seen []string
	m := Multi{
		RecorderFunc(func(_ context.Context, r CycleReport) { seen = append(seen, "a:"+r.ID) }),
		nil,
		Nop{},
		RecorderFunc(func(_ context.Context, r CycleReport) { seen = append(seen, "b:"+r.ID) }),
	}

	m.ObserveCycle(context.Background(), CycleReport{ID: "x"})

	if strings.Join(seen, ",") != "a:x,b:x" {
		t.Errorf("seen = %v, want [a:x b:x]", seen)
	}
}

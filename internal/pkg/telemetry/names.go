package telemetry

// Tracer names, one per instrumented component.
const (
	TracerFrameLoop = "vertiwatch/frameloop"
	TracerFleetAPI  = "vertiwatch/fleetapi"
	TracerRecorder  = "vertiwatch/recorder"
)

// Span names.
const (
	SpanPollBatch    = "poll.batch"
	SpanFleetGet     = "fleet.get"
	SpanRecordSample = "recorder.sample"
)

// Span attribute keys.
const (
	AttrSnapshotSeq      = "snapshot.seq"
	AttrSnapshotDrones   = "snapshot.drones"
	AttrSnapshotRequests = "snapshot.requests"
	AttrFleetEndpoint    = "fleet.endpoint"
	AttrHTTPStatus       = "http.status_code"
)

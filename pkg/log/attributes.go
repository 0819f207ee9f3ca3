// Standard attribute keys for citrine log records. Using these keys keeps
// the output filterable: every record about a given data view carries
// "view.id", every poll of a platform job carries "job.status", and so on.
// Keys follow a hierarchical dotted convention.

package log

// Platform resource context.
const (
	// DatasetIDKey identifies the platform dataset an operation touches.
	DatasetIDKey = "dataset.id"

	// DatasetVersionKey is the dataset version after an upload.
	DatasetVersionKey = "dataset.version"

	// ViewIDKey identifies the data view (hosted model configuration).
	ViewIDKey = "view.id"

	// RunIDKey identifies a design run submitted against a view.
	RunIDKey = "run.id"

	// RequestIDKey is the server-assigned id of a single HTTP request,
	// echoed back in the X-Request-Id header.
	RequestIDKey = "request.id"
)

// HTTP transport context.
const (
	// MethodKey is the HTTP method of an API call.
	MethodKey = "api.method"

	// PathKey is the request path of an API call.
	PathKey = "api.path"

	// StatusCodeKey is the HTTP status code of a response.
	StatusCodeKey = "api.status_code"

	// AttemptKey is the retry attempt number, starting at 1.
	AttemptKey = "api.attempt"
)

// Job polling context.
const (
	// JobKindKey names the kind of long-running job being polled,
	// e.g. "view training" or "design run".
	JobKindKey = "job.kind"

	// JobStatusKey is the most recent status string the poller observed.
	JobStatusKey = "job.status"

	// PollCountKey is the number of polls issued so far for a job.
	PollCountKey = "job.polls"
)

// Data shape context.
const (
	// SamplesKey is the number of records (rows) in play.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns in play.
	FeaturesKey = "data.features"

	// ChunkKey is the chunk index during a chunked dataset upload.
	ChunkKey = "data.chunk"
)

// Sequential-learning context.
const (
	// IterationKey is the current loop iteration, starting at 1.
	IterationKey = "sl.iteration"

	// AcquisitionKey names the acquisition strategy in use
	// ("MLI", "MEI", "random").
	AcquisitionKey = "sl.acquisition"

	// CandidateKey is the normalized formula of a chosen candidate.
	CandidateKey = "sl.candidate"

	// PredictedKey is the model's predicted value for a candidate.
	PredictedKey = "sl.predicted"

	// MeasuredKey is the objective's measured value for a candidate.
	MeasuredKey = "sl.measured"

	// BestKey is the best measured value seen so far.
	BestKey = "sl.best"
)

// Performance context.
const (
	// DurationMsKey records the execution time of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrAttrKey is the key under which an error value is attached.
	ErrAttrKey = "error"

	// StacktraceAttrKey carries the stack trace extracted from a
	// cockroachdb/errors error.
	StacktraceAttrKey = "stacktrace"
)

// Standard attribute values for common operations.
const (
	OperationKey = "operation"

	OperationUpload  = "upload"
	OperationSearch  = "search"
	OperationPredict = "predict"
	OperationDesign  = "design"
	OperationTrain   = "train"
	OperationLearn   = "learn"
)

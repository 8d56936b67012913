package weather

import "context"

// Payload is an undecoded provider document.
type Payload map[string]any

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	ErrCredentialMissing ErrorKind = "credential_missing"
	ErrTransport         ErrorKind = "transport_error"
	ErrParse             ErrorKind = "parse_error"
	ErrUnexpected        ErrorKind = "unexpected_error"
)

// FetchError is an upstream failure carried as a value.
type FetchError struct {
	Kind    ErrorKind
	Message string
}

func (e *FetchError) Error() string {
	return e.Message
}

// Result holds either a payload or a fetch error, never both.
type Result struct {
	payload Payload
	err     *FetchError
}

// Success wraps a decoded payload. A nil payload is stored as an empty one.
func Success(p Payload) Result {
	if p == nil {
		p = Payload{}
	}
	return Result{payload: p}
}

// Failure builds a failed result.
func Failure(kind ErrorKind, msg string) Result {
	return Result{err: &FetchError{Kind: kind, Message: msg}}
}

// Failed reports whether the fetch failed.
func (r Result) Failed() bool {
	return r.err != nil
}

// Payload returns the decoded document, or nil for a failed result.
func (r Result) Payload() Payload {
	return r.payload
}

// Err returns the fetch error, or nil for a successful result.
func (r Result) Err() *FetchError {
	return r.err
}

// Provider abstracts the upstream weather and air quality source.
// Implementations must convert every failure into a Result; they never panic
// or return errors across this boundary.
type Provider interface {
	Name() string
	FetchWeather(ctx context.Context, c Coordinates) Result
	FetchAirQuality(ctx context.Context, c Coordinates) Result
}

// Predictor turns a raw current weather reading into a next-day temperature.
// A trained model can replace the placeholder as long as it keeps this contract.
type Predictor interface {
	Name() string
	Predict(reading Payload) (float64, error)
}

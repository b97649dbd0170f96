// Package errors defines the error taxonomy every teto API returns,
// generalizing the teacher's VideoProcessingError (code + message + details)
// into the kinds named by the system's error-handling design: validation,
// asset, TTS provider, cache, encoder and internal-bug errors.
package errors

import "fmt"

// Kind identifies which part of the system produced an error and whether
// retrying the same operation could plausibly succeed.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindAssetNotFound Kind = "ASSET_NOT_FOUND"
	KindTtsAuth       Kind = "TTS_AUTH"
	KindTtsQuota      Kind = "TTS_QUOTA"
	KindTtsInvalid    Kind = "TTS_INVALID"
	KindTtsNetwork    Kind = "TTS_NETWORK"
	KindTtsServer     Kind = "TTS_SERVER"
	KindCacheIo       Kind = "CACHE_IO"
	KindEncoderIo     Kind = "ENCODER_IO"
	KindInternalBug   Kind = "INTERNAL_BUG"
)

var retryableKinds = map[Kind]bool{
	KindTtsNetwork: true,
	KindTtsServer:  true,
}

// Location pinpoints where in a Script/Project an error occurred, so
// user-visible reporting can say "scene 2, segment 1" rather than just
// restating the message (spec §7, user-visible behavior).
type Location struct {
	Scene   int `json:"scene,omitempty"`
	Segment int `json:"segment,omitempty"`
	Layer   int `json:"layer,omitempty"`
	Valid   bool `json:"-"`
}

// TetoError is the single error type returned across the compiler,
// cache, pipeline and provider-facing APIs.
type TetoError struct {
	Kind     Kind                   `json:"kind"`
	Message  string                 `json:"message"`
	Location *Location              `json:"location,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Cause    error                  `json:"-"`
}

func (e *TetoError) Error() string {
	if e.Location != nil && e.Location.Valid {
		return fmt.Sprintf("%s: %s (scene %d, segment %d, layer %d)",
			e.Kind, e.Message, e.Location.Scene, e.Location.Segment, e.Location.Layer)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TetoError) Unwrap() error { return e.Cause }

// Retryable reports whether the error kind is one spec §7 marks retryable
// (TtsNetwork, TtsServer); every other kind is not.
func (e *TetoError) Retryable() bool { return retryableKinds[e.Kind] }

// WithLocation attaches a scene/segment/layer location to an error and
// returns it, for chaining at the call site.
func (e *TetoError) WithLocation(loc Location) *TetoError {
	loc.Valid = true
	e.Location = &loc
	return e
}

func new_(kind Kind, message string, cause error) *TetoError {
	return &TetoError{Kind: kind, Message: message, Cause: cause}
}

// Validation constructs a non-retryable validation error (unknown
// reference, malformed script, invariant breach).
func Validation(message string) *TetoError { return new_(KindValidation, message, nil) }

// AssetNotFound constructs an error for a missing local asset file.
func AssetNotFound(path string) *TetoError {
	e := new_(KindAssetNotFound, fmt.Sprintf("asset not found: %s", path), nil)
	e.Details = map[string]interface{}{"path": path}
	return e
}

// TtsAuth, TtsQuota, TtsInvalid are non-retryable provider errors.
func TtsAuth(err error) *TetoError    { return new_(KindTtsAuth, "TTS provider authentication failed", err) }
func TtsQuota(err error) *TetoError   { return new_(KindTtsQuota, "TTS provider quota exceeded", err) }
func TtsInvalid(err error) *TetoError { return new_(KindTtsInvalid, "TTS provider rejected the request", err) }

// TtsNetwork and TtsServer are retryable provider errors.
func TtsNetwork(err error) *TetoError { return new_(KindTtsNetwork, "TTS provider network error", err) }
func TtsServer(err error) *TetoError  { return new_(KindTtsServer, "TTS provider server error", err) }

// CacheIo constructs a non-retryable cache I/O error.
func CacheIo(err error) *TetoError { return new_(KindCacheIo, "TTS cache I/O failed", err) }

// EncoderIo constructs a non-retryable encoder/output error.
func EncoderIo(err error) *TetoError { return new_(KindEncoderIo, "encoder failed", err) }

// InternalBug constructs an error for a broken invariant inside the pipeline.
func InternalBug(message string) *TetoError { return new_(KindInternalBug, message, nil) }

// ValidationErrors aggregates every violation found during a single
// validation pass, so compile() can report all of them at once (spec §7).
type ValidationErrors struct {
	Errors []*TetoError
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors, first: %s", len(v.Errors), v.Errors[0].Error())
}

func (v *ValidationErrors) Add(message string) {
	v.Errors = append(v.Errors, Validation(message))
}

func (v *ValidationErrors) AddAt(message string, loc Location) {
	v.Errors = append(v.Errors, Validation(message).WithLocation(loc))
}

func (v *ValidationErrors) HasErrors() bool { return len(v.Errors) > 0 }

// AsOrNil returns v as an error if it holds any violations, else nil —
// the idiom every validation pass ends with.
func (v *ValidationErrors) AsOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

// SanitizeForClient returns a short, non-leaky message safe to surface to
// an external caller, mirroring the teacher's client-safe error mapping.
func SanitizeForClient(err error) string {
	te, ok := err.(*TetoError)
	if !ok {
		return "an error occurred while processing the script"
	}
	switch te.Kind {
	case KindValidation:
		return "the script failed validation"
	case KindAssetNotFound:
		return "a referenced asset could not be found"
	case KindTtsAuth, KindTtsQuota, KindTtsInvalid:
		return "the text-to-speech provider rejected the request"
	case KindTtsNetwork, KindTtsServer:
		return "the text-to-speech provider is temporarily unavailable"
	case KindCacheIo:
		return "the local TTS cache could not be read or written"
	case KindEncoderIo:
		return "video encoding failed"
	default:
		return "an internal error occurred"
	}
}

// GetLogContext returns structured fields suitable for logger.WithFields.
func GetLogContext(err error) map[string]interface{} {
	ctx := map[string]interface{}{}
	te, ok := err.(*TetoError)
	if !ok {
		ctx["error"] = err.Error()
		return ctx
	}
	ctx["kind"] = string(te.Kind)
	ctx["message"] = te.Message
	ctx["retryable"] = te.Retryable()
	if te.Location != nil && te.Location.Valid {
		ctx["scene"] = te.Location.Scene
		ctx["segment"] = te.Location.Segment
		ctx["layer"] = te.Location.Layer
	}
	for k, v := range te.Details {
		ctx[k] = v
	}
	return ctx
}

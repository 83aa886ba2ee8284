package nifti

// Severity classifies a diagnostic event emitted during decoding.
type Severity int

const (
	// SeverityInfo marks benign observations, such as a byte-swapped
	// header or a defaulted voxel offset.
	SeverityInfo Severity = iota

	// SeverityWarning marks degraded-but-continuing conditions, such as
	// an unknown datatype code decoded under the float32 fallback.
	SeverityWarning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Diagnostic is a structured event describing a non-fatal condition observed
// while decoding. Diagnostics are returned alongside the volume rather than
// logged, so the decoder stays silent and callers decide how to surface them.
type Diagnostic struct {
	// Severity classifies the event
	Severity Severity

	// Code is a stable machine-readable identifier, e.g. "unknown-datatype"
	Code string

	// Message is a human-readable description
	Message string

	// Context carries event-specific fields, e.g. the offending datatype code
	Context map[string]string
}

// collector accumulates diagnostics during one decode call.
type collector struct {
	items []Diagnostic
}

func (c *collector) info(code, message string, context map[string]string) {
	c.items = append(c.items, Diagnostic{Severity: SeverityInfo, Code: code, Message: message, Context: context})
}

func (c *collector) warn(code, message string, context map[string]string) {
	c.items = append(c.items, Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Context: context})
}

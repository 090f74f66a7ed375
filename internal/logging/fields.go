package logging

// Standard attribute keys. Console output treats component specially; the
// rest keep log lines greppable across the daemon and CLI.
const (
	FieldComponent  = "component"
	FieldEventType  = "event_type"
	FieldErrorHint  = "error_hint"
	FieldImpact     = "impact"
	FieldTarget     = "target"
	FieldFile       = "file"
	FieldInstanceID = "instance_id"
)

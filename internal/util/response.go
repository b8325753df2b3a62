package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

// ValidationError carries per-field messages next to the generic error.
func ValidationError(fields map[string]string) Envelope {
	return Envelope{"error": "validation failed", "fields": fields}
}

func Message(message string) Envelope {
	return Envelope{"msg": message}
}

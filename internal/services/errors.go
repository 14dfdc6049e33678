package services

const (
	APIKeyEnv = "OPEN_MERCATO_API_KEY"

	missingAPIKeyMessage    = APIKeyEnv + " is not configured. Set it in the environment or config file before retrying."
	upstreamFallbackMessage = "Unable to load deals from Open Mercato."
)

// ConfigurationError reports a required setting that is absent.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Key + " is not configured"
}

// UpstreamError reports a failed call to the Open Mercato API. Status is zero
// when no HTTP response was received.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return upstreamFallbackMessage
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

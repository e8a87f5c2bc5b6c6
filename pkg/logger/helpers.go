package logger

// LogRequest logs HTTP request information at a level matching the status code
func LogRequest(method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	default:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	}
}

// LogCapture logs the outcome of one acquisition attempt
func LogCapture(backend, identity string, lat, lng float64, success bool, err error) {
	fields := map[string]interface{}{
		"backend":  backend,
		"identity": identity,
		"lat":      lat,
		"lng":      lng,
		"success":  success,
	}

	l := GetLogger().WithFields(fields)
	if err != nil {
		l.WithError(err).Warn("Capture attempt failed")
	} else {
		l.Info("Capture completed")
	}
}

// LogRateLimit logs rate limiting events
func LogRateLimit(endpoint string, waitSeconds int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"wait_s":   waitSeconds,
		"action":   "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

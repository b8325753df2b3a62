package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/njprem/Todo_APP_BackEnd/internal/metrics"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
	redacted           = "redacted"
)

var sensitiveKeys = []string{"password", "token", "secret", "authorization"}

func registerLogging(e *echo.Echo, logger zerolog.Logger, httpMetrics *metrics.HTTP) {
	e.Use(middleware.RequestID())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := logger.With().Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()
			req := c.Request()
			c.SetRequest(req.WithContext(reqLogger.WithContext(req.Context())))
			return next(c)
		}
	})

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRoutePath: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			httpMetrics.Observe(v.Method, v.RoutePath, v.Status, v.Latency)

			event := zerolog.Ctx(c.Request().Context()).Info()
			switch {
			case v.Status >= 500:
				event = zerolog.Ctx(c.Request().Context()).Error()
			case v.Status >= 400:
				event = zerolog.Ctx(c.Request().Context()).Warn()
			}

			userID := "anonymous"
			if user, ok := CurrentUser(c); ok {
				userID = user.ID.String()
			}

			event = event.
				Str("method", v.Method).
				Str("uri", loggableURI(v.URI, v.RoutePath)).
				Int("status", v.Status).
				Int64("latency_ms", v.Latency.Milliseconds()).
				Str("user_id", userID)
			if summary := c.Get(requestBodyLogKey); summary != nil {
				event = event.Interface("request_body", summary)
			}
			if summary := c.Get(responseBodyLogKey); summary != nil {
				event = event.Interface("response_body", summary)
			}
			if v.Error != nil {
				event = event.Err(v.Error)
			}
			event.Msg("http request")
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
		if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
			c.Set(responseBodyLogKey, summary)
		}
	}))
}

// loggableURI drops path segments that carry secrets, such as reset tokens.
func loggableURI(uri, routePath string) string {
	if strings.Contains(routePath, ":token") {
		return routePath
	}
	return uri
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func sanitizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}

	trimmedType := strings.TrimSpace(contentType)
	loweredType := strings.ToLower(trimmedType)

	if strings.HasPrefix(loweredType, "multipart/form-data") {
		return sanitizeMultipart(body, trimmedType)
	}

	if strings.HasPrefix(loweredType, "application/json") || json.Valid(body) {
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return limitSize(sanitizeJSON(data))
		}
	}

	if strings.HasPrefix(loweredType, "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil && len(values) > 0 {
			fields := make(map[string]any, len(values))
			for key, vals := range values {
				for _, v := range vals {
					addFormField(fields, key, sanitizeValue(key, v))
				}
			}
			return limitSize(fields)
		}
	}

	if containsBinaryBytes(body) {
		return "binary"
	}
	return clampString(string(body))
}

func sanitizeJSON(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			if isSensitiveKey(key) {
				result[key] = redacted
				continue
			}
			result[key] = sanitizeJSON(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = sanitizeJSON(item)
		}
		return result
	case string:
		if containsBinaryBytes([]byte(v)) {
			return "binary"
		}
		return clampString(v)
	default:
		return v
	}
}

func sanitizeValue(key, value string) string {
	if isSensitiveKey(key) {
		return redacted
	}
	if containsBinaryBytes([]byte(value)) {
		return "binary"
	}
	return clampString(value)
}

func sanitizeMultipart(body []byte, contentType string) any {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return "binary"
	}

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := make(map[string]any)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "binary"
		}

		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}

		var value any = "binary"
		if part.FileName() == "" {
			if data, err := io.ReadAll(part); err == nil {
				value = sanitizeValue(name, string(data))
			}
		}
		_ = part.Close()
		addFormField(fields, name, value)
	}

	if len(fields) == 0 {
		return "binary"
	}
	return limitSize(fields)
}

func limitSize(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	return map[string]any{"_truncated": true, "_bytes": len(buf)}
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}

func addFormField(fields map[string]any, key string, value any) {
	if existing, ok := fields[key]; ok {
		switch items := existing.(type) {
		case []any:
			fields[key] = append(items, value)
		default:
			fields[key] = []any{items, value}
		}
		return
	}
	fields[key] = value
}

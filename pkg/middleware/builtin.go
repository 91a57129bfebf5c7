package middleware

import (
	"fmt"
	"time"

	"github.com/Suhaibinator/SKernel/pkg/common"
	"github.com/Suhaibinator/SKernel/pkg/registry"
	"go.uber.org/zap"
)

// PkgPath is the import path this package registers its exports under.
const PkgPath = "github.com/Suhaibinator/SKernel/pkg/middleware"

// Built-ins register under short names and under this package's import path,
// so configuration may reference either "cors" or
// "github.com/Suhaibinator/SKernel/pkg/middleware.CORS".
func init() {
	named := map[string]any{
		"cors":          registry.Constructor(newCORS),
		"gzip":          GZip(),
		"trusted_host":  registry.Constructor(newTrustedHost),
		"trace":         Trace(),
		"client_ip":     ClientIPMiddleware(nil),
		"logging":       registry.Constructor(newLogging),
		"recovery":      registry.Constructor(newRecovery),
		"ratelimit":     registry.Constructor(newRateLimit),
		"metrics":       Metrics(),
		"auth":          registry.Constructor(newAuth),
		"max_body_size": registry.Constructor(newMaxBodySize),
		"timeout":       registry.Constructor(newTimeout),
	}
	for name, ref := range named {
		registry.Default.Register(name, ref)
	}

	registry.Default.RegisterProvider(PkgPath, map[string]any{
		"CORS":               registry.Constructor(newCORS),
		"GZip":               GZip(),
		"TrustedHost":        registry.Constructor(newTrustedHost),
		"Trace":              Trace(),
		"ClientIPMiddleware": ClientIPMiddleware(nil),
		"Logging":            registry.Constructor(newLogging),
		"Recovery":           registry.Constructor(newRecovery),
		"RateLimit":          registry.Constructor(newRateLimit),
		"Metrics":            Metrics(),
		"Auth":               registry.Constructor(newAuth),
		"MaxBodySize":        registry.Constructor(newMaxBodySize),
		"Timeout":            registry.Constructor(newTimeout),
	})
}

func newCORS(args map[string]any) (common.Middleware, error) {
	origins, err := argStrings(args, "origins")
	if err != nil {
		return nil, err
	}
	methods, err := argStrings(args, "methods")
	if err != nil {
		return nil, err
	}
	headers, err := argStrings(args, "headers")
	if err != nil {
		return nil, err
	}
	return CORS(origins, methods, headers), nil
}

func newTrustedHost(args map[string]any) (common.Middleware, error) {
	hosts, err := argStrings(args, "allowed_hosts")
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		hosts = []string{"*"}
	}
	return TrustedHost(hosts), nil
}

func newLogging(args map[string]any) (common.Middleware, error) {
	logger, err := argLogger(args)
	if err != nil {
		return nil, err
	}
	return Logging(logger), nil
}

func newRecovery(args map[string]any) (common.Middleware, error) {
	logger, err := argLogger(args)
	if err != nil {
		return nil, err
	}
	return Recovery(logger), nil
}

func newRateLimit(args map[string]any) (common.Middleware, error) {
	rps, err := argInt(args, "rps", 100)
	if err != nil {
		return nil, err
	}
	logger, err := argLogger(args)
	if err != nil {
		return nil, err
	}
	return RateLimit(rps, logger), nil
}

func newAuth(args map[string]any) (common.Middleware, error) {
	apiKeys, err := argStrings(args, "api_keys")
	if err != nil {
		return nil, err
	}
	secret, err := argString(args, "jwt_secret", "")
	if err != nil {
		return nil, err
	}
	return NewAuth(apiKeys, secret).Middleware(), nil
}

func newMaxBodySize(args map[string]any) (common.Middleware, error) {
	maxBytes, err := argInt(args, "max_bytes", 1<<20)
	if err != nil {
		return nil, err
	}
	return MaxBodySize(int64(maxBytes)), nil
}

func newTimeout(args map[string]any) (common.Middleware, error) {
	timeout, err := argDuration(args, "timeout", 30*time.Second)
	if err != nil {
		return nil, err
	}
	return Timeout(timeout), nil
}

// argStrings reads a string list argument. YAML decoding produces []any, so
// both []string and []any of strings are accepted. A missing key yields nil.
func argStrings(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("argument %q: expected string element, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("argument %q: expected string list, got %T", key, raw)
	}
}

func argString(args map[string]any, key, fallback string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("argument %q: expected string, got %T", key, raw)
	}
	return s, nil
}

func argInt(args map[string]any, key string, fallback int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("argument %q: expected integer, got %T", key, raw)
	}
}

// argDuration reads a duration argument given either as a duration string
// ("5s") or as a number of seconds.
func argDuration(args map[string]any, key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case time.Duration:
		return v, nil
	default:
		return 0, fmt.Errorf("argument %q: expected duration, got %T", key, raw)
	}
}

// argLogger reads an optional "logger" argument supplied programmatically.
// Configuration files cannot carry a logger, so the default is a production
// zap logger.
func argLogger(args map[string]any) (*zap.Logger, error) {
	raw, ok := args["logger"]
	if !ok || raw == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return zap.NewNop(), nil
		}
		return logger, nil
	}
	logger, ok := raw.(*zap.Logger)
	if !ok {
		return nil, fmt.Errorf("argument %q: expected *zap.Logger, got %T", "logger", raw)
	}
	return logger, nil
}

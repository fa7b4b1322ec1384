package llm

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/llmkit/errors"
	"github.com/kbukum/llmkit/logger"
	"github.com/kbukum/llmkit/security"
	"github.com/kbukum/llmkit/util"
	"github.com/kbukum/llmkit/validation"
)

// Defaults shared by every vendor.
const (
	DefaultTimeout         = 60 * time.Second
	DefaultMaxOutputTokens = 2048
	DefaultTemperature     = 0.1
	DefaultTopP            = 0.1
)

// Transport names accepted in the "transport" option.
const (
	TransportSDK  = "sdk"
	TransportHTTP = "http"
)

// Settings is the resolved provider configuration. A Client never mutates it.
type Settings struct {
	APIKey          string        `json:"api_key" mapstructure:"api_key" validate:"required"`
	Model           string        `json:"model" mapstructure:"model" validate:"required"`
	BaseURL         string        `json:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout         time.Duration `json:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// MaxOutputTokens is bounded to int32, the widest type a vendor accepts.
	MaxOutputTokens int           `json:"max_output_tokens" mapstructure:"max_output_tokens" validate:"gt=0,lte=2147483647"`
	Temperature     float64       `json:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopP            float64       `json:"top_p" mapstructure:"top_p" validate:"gte=0,lte=1"`
	// Transport selects the vendor SDK ("sdk") or raw HTTP ("http").
	Transport string              `json:"transport" mapstructure:"transport" validate:"omitempty,oneof=sdk http"`
	TLS       *security.TLSConfig `json:"tls" mapstructure:"tls"`
	Headers   map[string]string   `json:"headers" mapstructure:"headers"`
}

// Redacted returns a copy safe for logging.
func (s Settings) Redacted() Settings {
	if s.APIKey != "" {
		s.APIKey = util.MaskSecret(s.APIKey, 0)
	}
	s.Headers = maps.Clone(s.Headers)
	return s
}

type parseOptions struct {
	optionalAPIKey bool
}

// ParseOption adjusts ParseSettings.
type ParseOption func(*parseOptions)

// WithOptionalAPIKey skips the api_key requirement, for local backends.
func WithOptionalAPIKey() ParseOption {
	return func(o *parseOptions) { o.optionalAPIKey = true }
}

// ParseSettings resolves an option map into validated Settings.
//
// Zero fields of base are filled with the package defaults, then cfg is
// decoded on top. "timeout" accepts seconds (number or numeric string), a
// duration string such as "5s", or a time.Duration. No network I/O happens.
func ParseSettings(vendor string, cfg map[string]any, base Settings, opts ...ParseOption) (Settings, error) {
	var po parseOptions
	for _, opt := range opts {
		opt(&po)
	}

	s := base
	s.Headers = maps.Clone(base.Headers)
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MaxOutputTokens == 0 {
		s.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if s.Temperature == 0 {
		s.Temperature = DefaultTemperature
	}
	if s.TopP == 0 {
		s.TopP = DefaultTopP
	}
	if s.Transport == "" {
		s.Transport = TransportSDK
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Metadata:         &md,
		DecodeHook:       durationSecondsHook(),
	})
	if err != nil {
		return Settings{}, ConfigError(vendor, err.Error(), err)
	}
	if err := dec.Decode(cfg); err != nil {
		return Settings{}, ConfigError(vendor, sanitize(err.Error(), stringOption(cfg, "api_key")), err)
	}
	if len(md.Unused) > 0 {
		logger.Get("llm").Debug("ignoring unknown provider options", map[string]interface{}{
			logger.FieldVendor: vendor,
			"options":          md.Unused,
		})
	}

	s.APIKey = strings.TrimSpace(s.APIKey)
	s.Model = strings.TrimSpace(s.Model)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	s.Transport = strings.ToLower(strings.TrimSpace(s.Transport))

	if err := validateSettings(s, po); err != nil {
		return Settings{}, ConfigError(vendor, validationMessage(err), err)
	}
	if err := s.TLS.Validate(); err != nil {
		return Settings{}, ConfigError(vendor, "tls: "+err.Error(), err)
	}
	return s, nil
}

func validateSettings(s Settings, po parseOptions) error {
	if po.optionalAPIKey {
		return validation.ValidateExcept(s, "APIKey")
	}
	return validation.Validate(s)
}

func validationMessage(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

func stringOption(cfg map[string]any, key string) string {
	v, _ := cfg[key].(string)
	return v
}

var durationType = reflect.TypeOf(time.Duration(0))

// durationSecondsHook decodes bare numbers as seconds.
func durationSecondsHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			str := strings.TrimSpace(v)
			if secs, err := strconv.ParseFloat(str, 64); err == nil {
				return seconds(secs)
			}
			d, err := time.ParseDuration(str)
			if err != nil {
				return nil, fmt.Errorf("timeout: invalid duration %q", str)
			}
			return d, nil
		}
		rv := reflect.ValueOf(data)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return seconds(float64(rv.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return seconds(float64(rv.Uint()))
		case reflect.Float32, reflect.Float64:
			return seconds(rv.Float())
		}
		return data, nil
	}
}

// seconds converts s to a Duration. Values past the int64 range are
// rejected; large negative ones saturate so validation reports them.
func seconds(s float64) (time.Duration, error) {
	ns := s * float64(time.Second)
	switch {
	case math.IsNaN(ns):
		return 0, fmt.Errorf("timeout: invalid duration %v", s)
	case ns >= math.MaxInt64:
		return 0, fmt.Errorf("timeout is too large")
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64), nil
	}
	return time.Duration(ns), nil
}

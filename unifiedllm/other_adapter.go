package unifiedllm

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

// otherAdapter posts {message: prompt, ...data} to an arbitrary endpoint and
// reads the reply at the configured response path. Errors propagate.
type otherAdapter struct {
	http   *httpClient
	logger logrus.FieldLogger
}

func (a *otherAdapter) Name() string             { return string(KindOther) }
func (a *otherAdapter) FailureMode() FailureMode { return Propagate }

func (a *otherAdapter) Call(ctx context.Context, cfg *EffectiveConfig, prompt string) (string, error) {
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return "", configError("other requires a valid baseUrl", err)
	}

	body, err := buildOtherBody(prompt, cfg.Data)
	if err != nil {
		return "", err
	}

	endpoint := cfg.BaseURL
	var headers map[string]string
	if rc := cfg.RequestConfig; rc != nil {
		if endpoint, err = withQuery(endpoint, rc.Params); err != nil {
			return "", configError("other baseUrl is not a valid URL", err)
		}
		headers = requestHeaders(rc)
		if len(rc.Extra) > 0 && a.logger != nil {
			a.logger.WithFields(logrus.Fields{
				"adapter": a.Name(),
				"ignored": sortedKeys(rc.Extra),
			}).Warn("ignoring unsupported requestConfig options")
		}
		if rc.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(rc.Timeout)*time.Millisecond)
			defer cancel()
		}
	}

	data, err := a.http.postJSON(ctx, a.Name(), endpoint, headers, body)
	if err != nil {
		return "", err
	}

	path := cfg.ResponsePath
	if path == "" {
		path = DefaultResponsePath
	}
	return ExtractResponsePath(data, path), nil
}

// requestHeaders returns the configured headers plus a Basic Authorization
// header when auth is set. auth replaces any Authorization header.
func requestHeaders(rc *RequestConfig) map[string]string {
	if rc.Auth == nil {
		return rc.Headers
	}
	headers := make(map[string]string, len(rc.Headers)+1)
	for k, v := range rc.Headers {
		headers[k] = v
	}
	creds := base64.StdEncoding.EncodeToString([]byte(rc.Auth.Username + ":" + rc.Auth.Password))
	headers["Authorization"] = "Basic " + creds
	return headers
}

// buildOtherBody sets message first so a "message" key in data overrides it.
func buildOtherBody(prompt string, data map[string]any) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "message", prompt)
	if err != nil {
		return nil, err
	}
	for _, key := range sortedKeys(data) {
		if body, err = sjson.SetBytes(body, escapePathComponent(key), data[key]); err != nil {
			return nil, err
		}
	}
	return body, nil
}

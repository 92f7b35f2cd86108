// Package provider holds the OpenAI plumbing shared by model-backed scorers.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// RetryPolicy lists the waits between attempts. A chat turn is interactive, so the defaults are
// far shorter than a batch job would tolerate.
type RetryPolicy struct {
	MaxAttempts      int
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		RateLimitWaits:   []time.Duration{2 * time.Second, 5 * time.Second},
		ServerErrorWaits: []time.Duration{500 * time.Millisecond, 2 * time.Second},
	}
}

func (p RetryPolicy) wait(waits []time.Duration, attempt int) (time.Duration, bool) {
	if attempt >= p.MaxAttempts-1 || len(waits) == 0 {
		return 0, false
	}
	if attempt < len(waits) {
		return waits[attempt], true
	}
	return waits[len(waits)-1], true
}

func CallWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams, policy RetryPolicy) (*responses.Response, error) {
	if client == nil {
		return nil, fmt.Errorf("CallWithRetry: client is nil")
	}
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}

		var (
			d     time.Duration
			retry bool
		)
		switch {
		case IsRateLimitError(err):
			d, retry = policy.wait(policy.RateLimitWaits, attempt)
		case IsServerError(err):
			d, retry = policy.wait(policy.ServerErrorWaits, attempt)
		}
		if !retry {
			return nil, err
		}
		if err := sleepCtx(ctx, d); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed after %d attempts due to OpenAI API issues", policy.MaxAttempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func IsServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// GenerateSchema reflects T into a strict-mode JSON schema: every object closed and every property required.
func GenerateSchema[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("GenerateSchema: marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("GenerateSchema: unmarshal: %w", err)
	}
	closeObjects(m)
	return m, nil
}

func closeObjects(schema map[string]any) {
	properties, _ := schema["properties"].(map[string]any)

	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if len(properties) > 0 {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			sort.Strings(required)
			schema["required"] = required
		}
	}

	for _, prop := range properties {
		if m, ok := prop.(map[string]any); ok {
			closeObjects(m)
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		closeObjects(items)
	}
}

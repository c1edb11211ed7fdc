package actions

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/clariohq/clario/core/types"
)

// requireID pulls a uuid-valued param, failing validation when absent or
// malformed.
func requireID(params types.ActionParams, key string) (uuid.UUID, error) {
	raw, ok := params[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("%w: missing %s", types.ErrValidation, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad %s: %v", types.ErrValidation, key, err)
	}
	return id, nil
}

func requireString(params types.ActionParams, key string) (string, error) {
	raw, ok := params[key].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: missing %s", types.ErrValidation, key)
	}
	return raw, nil
}

func optionalString(params types.ActionParams, key string) string {
	raw, _ := params[key].(string)
	return raw
}

// stringList tolerates both []string (decided in-process) and []interface{}
// (round-tripped through JSON).
func stringList(params types.ActionParams, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

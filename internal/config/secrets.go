package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Getter fetches several parameters at once. paramstore.Client satisfies it.
type Getter interface {
	GetParameters(ctx context.Context, names []string) (map[string]string, error)
}

// tokenPayload is the expected JSON shape stored in SSM for every secret.
type tokenPayload struct {
	Token string `json:"token"`
}

// ResolveSecrets fills empty API keys from Parameter Store under
// cfg.ParamPrefix in a single lookup. Keys already set through the
// environment win. Missing or malformed parameters are logged and leave the
// key empty so that only the dependent feature degrades.
func ResolveSecrets(ctx context.Context, getter Getter, cfg *Config) {
	if getter == nil || cfg == nil || cfg.ParamPrefix == "" {
		return
	}

	secrets := map[string]*string{
		cfg.ParamPrefix + "/google-api-key": &cfg.CalendarAPIKey,
		cfg.ParamPrefix + "/gemini-api-key": &cfg.GeminiAPIKey,
		cfg.ParamPrefix + "/open-ai-token":  &cfg.OpenAIAPIKey,
	}
	names := make([]string, 0, len(secrets))
	for name, dst := range secrets {
		if *dst == "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}

	found, err := getter.GetParameters(ctx, names)
	if err != nil {
		slog.Warn("secrets not resolved", "prefix", cfg.ParamPrefix, "err", err)
		return
	}
	for _, name := range names {
		raw, ok := found[name]
		if !ok {
			slog.Warn("secret parameter not found", "param", name)
			continue
		}
		token, err := parseToken(raw)
		if err != nil {
			slog.Warn("secret parameter unusable", "param", name, "err", err)
			continue
		}
		*secrets[name] = token
	}
}

func parseToken(raw string) (string, error) {
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("config: unmarshal paramstore secret as JSON: %w", err)
	}
	token := strings.TrimSpace(tp.Token)
	if token == "" {
		return "", errors.New("config: secret token is empty")
	}
	return token, nil
}

package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/emsdesk/emsdesk/pkg/cryptox"
)

// InitSigningSecret resolves the HS256 signing secret for JWTs.
//
// Resolution order:
//  1. AUTH_JWT_SECRET environment variable, when set.
//  2. The secret file at cfg.JWTSecretFile, when it exists.
//  3. A freshly generated secret, written to cfg.JWTSecretFile so tokens
//     survive restarts.
func InitSigningSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		logger.Info("using JWT signing secret from environment")
		return []byte(cfg.JWTSecret), nil
	}

	data, err := os.ReadFile(cfg.JWTSecretFile)
	if err == nil {
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return nil, fmt.Errorf("JWT secret file %s is empty", cfg.JWTSecretFile)
		}
		logger.Info("loaded JWT signing secret", "path", cfg.JWTSecretFile)
		return []byte(secret), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read JWT secret file: %w", err)
	}

	secret, err := cryptox.GenerateSecret(cryptox.SecretSize512)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	if err := os.WriteFile(cfg.JWTSecretFile, []byte(secret+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist JWT secret: %w", err)
	}

	logger.Info("generated new JWT signing secret", "path", cfg.JWTSecretFile)
	return []byte(secret), nil
}

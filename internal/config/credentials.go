package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fpang/gemini-explain/internal/tool"
	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".gemini-explain"
	credentialFile = "credentials.gpg"
	passphraseFile = ".gpg-passphrase"
)

// keyFromGPG decrypts the API key from the GPG-encrypted credentials file.
func keyFromGPG(ctx context.Context, gpg tool.Runner) (string, error) {
	credPath, err := credentialPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	// Optional passphrase file for non-interactive use (hotkey launches have no pinentry tty).
	args := []string{"--decrypt", "--quiet", "--batch"}
	if passphrasePath, ok := securePassphrasePath(filepath.Dir(credPath)); ok {
		log.Debug().Str("passphrase_file", passphrasePath).Msg("Using passphrase file for GPG decryption")
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", passphrasePath)
	}
	args = append(args, credPath)

	res, err := gpg.Run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}

	return strings.TrimSpace(res.Stdout), nil
}

// credentialPath returns the full path to the credentials file.
func credentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, credentialDir, credentialFile), nil
}

// securePassphrasePath returns the passphrase file in dir if it exists and is owner-only.
func securePassphrasePath(dir string) (string, bool) {
	path := filepath.Join(dir, passphraseFile)
	fi, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	mode := fi.Mode().Perm()
	if mode&0o077 != 0 {
		log.Warn().
			Str("passphrase_file", path).
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Passphrase file has insecure permissions (should be 0600); skipping")
		return "", false
	}
	return path, true
}

package secrets

// Package secrets provides secure key management using Doppler

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// DopplerClient provides access to secrets stored in Doppler. Secrets are
// downloaded once per process and served from memory after that.
type DopplerClient struct {
	Project string
	Config  string

	mu          sync.RWMutex
	cache       map[string]string
	initialized bool
}

// NewDopplerClient creates a new Doppler client
func NewDopplerClient(project, config string) *DopplerClient {
	return &DopplerClient{
		Project: project,
		Config:  config,
		cache:   make(map[string]string),
	}
}

// Initialize checks the Doppler CLI is installed and preloads the secret set
func (d *DopplerClient) Initialize() error {
	if _, err := exec.LookPath("doppler"); err != nil {
		return fmt.Errorf("doppler CLI not found: %w", err)
	}

	cmd := exec.Command("doppler", "secrets", "download",
		"--project", d.Project,
		"--config", d.Config,
		"--no-file", "--format", "json")

	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to download secrets: %w", err)
	}

	var downloaded map[string]string
	if err := json.Unmarshal(output, &downloaded); err != nil {
		return fmt.Errorf("failed to parse secrets: %w", err)
	}

	d.mu.Lock()
	d.cache = downloaded
	d.initialized = true
	d.mu.Unlock()
	return nil
}

// GetSecret retrieves a secret, preferring the process environment (for
// local development under doppler run) over the downloaded set
func (d *DopplerClient) GetSecret(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	d.mu.RLock()
	value, ok := d.cache[key]
	initialized := d.initialized
	d.mu.RUnlock()

	if ok {
		return strings.TrimSpace(value), nil
	}
	if !initialized {
		if err := d.Initialize(); err != nil {
			return "", err
		}
		d.mu.RLock()
		value, ok = d.cache[key]
		d.mu.RUnlock()
		if ok {
			return strings.TrimSpace(value), nil
		}
	}

	return "", fmt.Errorf("secret %s not found", key)
}

// GetSecretWithFallback gets a secret with a fallback value
func (d *DopplerClient) GetSecretWithFallback(key, fallback string) string {
	value, err := d.GetSecret(key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

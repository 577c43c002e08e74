package store

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Credentials holds the judge-site session cookie and username.
// Values are read once by Load and written through on every change.
type Credentials struct {
	kv KV

	mu           sync.RWMutex
	judgeSession string
	username     string
}

// NewCredentials builds a credential store over kv. Call Load before use.
func NewCredentials(kv KV) *Credentials {
	return &Credentials{kv: kv}
}

// Load reads the persisted cookie and username.
func (c *Credentials) Load() error {
	session, _, err := c.kv.Get(KeyJudgeSession)
	if err != nil {
		return err
	}
	username, _, err := c.kv.Get(KeyUsername)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.judgeSession, c.username = session, username
	c.mu.Unlock()
	return nil
}

// JudgeSession returns the stored judge-site session, or "".
func (c *Credentials) JudgeSession() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.judgeSession
}

// Username returns the stored judge-site username, or "".
func (c *Credentials) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// SetJudgeSession stores a new session value; "" removes it.
func (c *Credentials) SetJudgeSession(value string) error {
	value = strings.TrimSpace(value)
	if err := c.write(KeyJudgeSession, value); err != nil {
		return err
	}
	c.mu.Lock()
	c.judgeSession = value
	c.mu.Unlock()
	return nil
}

// SetUsername stores a new username; "" removes it.
func (c *Credentials) SetUsername(value string) error {
	value = strings.TrimSpace(value)
	if err := c.write(KeyUsername, value); err != nil {
		return err
	}
	c.mu.Lock()
	c.username = value
	c.mu.Unlock()
	return nil
}

// ClearJudgeSession forgets the session so the user must enter it again.
func (c *Credentials) ClearJudgeSession() error {
	log.Info("clearing stored judge session")
	return c.SetJudgeSession("")
}

func (c *Credentials) write(key, value string) error {
	if value == "" {
		return c.kv.Delete(key)
	}
	return c.kv.Set(key, value)
}

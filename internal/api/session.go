package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

// storedCookie is the on-disk form of one session cookie. Only the
// name/value pair matters; the server's session cookie has no expiry.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// restoreSession loads cookies from the session file into the jar.
// A missing or unreadable file simply means no session.
func (c *Client) restoreSession() {
	if c.sessionFile == "" {
		return
	}
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		c.log.Debug("ignoring malformed session file", "file", c.sessionFile)
		return
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

// persistSession writes the jar's cookies for the server to disk.
func (c *Client) persistSession() error {
	if c.sessionFile == "" {
		return nil
	}
	cookies := c.jar.Cookies(c.baseURL)
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.sessionFile, data, 0600)
}

// clearSession removes the stored session, if any.
func (c *Client) clearSession() {
	if c.sessionFile == "" {
		return
	}
	_ = os.Remove(c.sessionFile)
}

// HasSession reports whether a session cookie is currently held.
func (c *Client) HasSession() bool {
	return len(c.jar.Cookies(c.baseURL)) > 0
}

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// PersistentJar keeps the server session cookie across process runs, which
// is what lets session recovery find the files of a previous upload
type PersistentJar struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	base *url.URL
	path string
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewPersistentJar loads cookies for base from path (missing file is fine)
func NewPersistentJar(path, base string) (*PersistentJar, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	// Cookies are scoped to the server root
	u.Path = "/"

	pj := &PersistentJar{jar: jar, base: u, path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pj, nil
		}
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt file only costs the session; start fresh
		return pj, nil
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(u, cookies)
	return pj, nil
}

func (p *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.current().SetCookies(u, cookies)
	// On a write failure the in-memory jar still serves this run
	_ = p.save()
}

func (p *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return p.current().Cookies(u)
}

func (p *PersistentJar) current() *cookiejar.Jar {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jar
}

// Reset forgets every cookie, ending the server session from the client's side
func (p *PersistentJar) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	p.jar = jar
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *PersistentJar) save() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var stored []storedCookie
	for _, c := range p.jar.Cookies(p.base) {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// KeyCookies is the storage key holding the server's cookies.
const KeyCookies = "cookies"

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// PersistentJar is an http.CookieJar that remembers the cookies of one
// server across process restarts. Session cookies without an expiry are kept
// too: they are what carries the login between invocations.
type PersistentJar struct {
	mu      sync.Mutex
	storage Storage
	origin  *url.URL
	jar     *cookiejar.Jar
	cookies map[string]storedCookie
	now     func() time.Time
}

// NewPersistentJar creates a jar for serverURL and replays any cookies
// previously saved in storage.
func NewPersistentJar(storage Storage, serverURL string) (*PersistentJar, error) {
	origin, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	j := &PersistentJar{
		storage: storage,
		origin:  origin,
		cookies: make(map[string]storedCookie),
		now:     time.Now,
	}
	if err := j.reset(); err != nil {
		return nil, err
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// SetCookies stores cookies in the in-memory jar and, for the configured
// server, persists them. Deleted and expired cookies are pruned.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
	if u.Hostname() != j.origin.Hostname() {
		return
	}

	now := j.now()
	for _, c := range cookies {
		sc := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if sc.Path == "" {
			sc.Path = "/"
		}
		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		key := sc.Name + "|" + sc.Path
		if c.MaxAge < 0 || sc.expired(now) {
			delete(j.cookies, key)
			continue
		}
		j.cookies[key] = sc
	}

	if err := j.save(); err != nil {
		log.Warn().Err(err).Msg("failed to persist cookies")
	}
}

// ClearCookies forgets every cookie, in memory and in storage.
func (j *PersistentJar) ClearCookies() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cookies = make(map[string]storedCookie)
	if err := j.reset(); err != nil {
		return err
	}
	return j.storage.RemoveItem(KeyCookies)
}

func (j *PersistentJar) reset() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.jar = jar
	return nil
}

func (j *PersistentJar) load() error {
	raw, ok, err := j.storage.GetItem(KeyCookies)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	if !ok {
		return nil
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Warn().Err(err).Msg("ignoring corrupted cookie store")
		return nil
	}

	now := j.now()
	var cookies []*http.Cookie
	for _, sc := range stored {
		if sc.expired(now) {
			continue
		}
		j.cookies[sc.Name+"|"+sc.Path] = sc
		cookies = append(cookies, &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HttpOnly,
		})
	}
	if len(cookies) > 0 {
		j.jar.SetCookies(j.origin, cookies)
	}
	return nil
}

func (j *PersistentJar) save() error {
	if len(j.cookies) == 0 {
		return j.storage.RemoveItem(KeyCookies)
	}
	stored := make([]storedCookie, 0, len(j.cookies))
	for _, sc := range j.cookies {
		stored = append(stored, sc)
	}
	sort.Slice(stored, func(a, b int) bool {
		if stored[a].Name != stored[b].Name {
			return stored[a].Name < stored[b].Name
		}
		return stored[a].Path < stored[b].Path
	})
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return j.storage.SetItem(KeyCookies, string(data))
}

var _ http.CookieJar = (*PersistentJar)(nil)

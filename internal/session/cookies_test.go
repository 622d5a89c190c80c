package session

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentJarSurvivesRestart(t *testing.T) {
	storage := NewMemoryStorage()
	u, _ := url.Parse("http://localhost:8000/login/")

	jar, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{
		{Name: "sessionid", Value: "s1", Path: "/"},
		{Name: "csrftoken", Value: "c1", Path: "/", MaxAge: 3600},
	})

	reloaded, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)
	patients, _ := url.Parse("http://localhost:8000/patients/api/patients/")
	cookies := reloaded.Cookies(patients)
	require.Len(t, cookies, 2)

	values := map[string]string{}
	for _, c := range cookies {
		values[c.Name] = c.Value
	}
	assert.Equal(t, "s1", values["sessionid"])
	assert.Equal(t, "c1", values["csrftoken"])
}

func TestPersistentJarPrunesDeletedCookies(t *testing.T) {
	storage := NewMemoryStorage()
	u, _ := url.Parse("http://localhost:8000/")

	jar, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "sessionid", Value: "s1", Path: "/"}})
	jar.SetCookies(u, []*http.Cookie{{Name: "sessionid", Value: "", Path: "/", MaxAge: -1}})

	assert.Empty(t, jar.Cookies(u))
	_, ok, _ := storage.GetItem(KeyCookies)
	assert.False(t, ok)
}

func TestPersistentJarDropsExpiredOnLoad(t *testing.T) {
	storage := NewMemoryStorage()
	u, _ := url.Parse("http://localhost:8000/")

	jar, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "short", Value: "v", Path: "/", MaxAge: 60}})

	later, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)
	require.Len(t, later.Cookies(u), 1)

	// rebuild with a clock past the expiry
	expired := &PersistentJar{
		storage: storage,
		origin:  u,
		cookies: make(map[string]storedCookie),
		now:     func() time.Time { return time.Now().Add(2 * time.Hour) },
	}
	require.NoError(t, expired.reset())
	require.NoError(t, expired.load())
	assert.Empty(t, expired.cookies)
}

func TestPersistentJarIgnoresOtherHosts(t *testing.T) {
	storage := NewMemoryStorage()
	jar, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)

	other, _ := url.Parse("http://cdn.example.org/")
	jar.SetCookies(other, []*http.Cookie{{Name: "tracking", Value: "x", Path: "/"}})

	_, ok, _ := storage.GetItem(KeyCookies)
	assert.False(t, ok)
}

func TestPersistentJarClear(t *testing.T) {
	storage := NewMemoryStorage()
	u, _ := url.Parse("http://localhost:8000/")

	jar, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "sessionid", Value: "s1", Path: "/"}})
	require.NoError(t, jar.ClearCookies())

	assert.Empty(t, jar.Cookies(u))
	_, ok, _ := storage.GetItem(KeyCookies)
	assert.False(t, ok)
}

func TestPersistentJarCorruptedValue(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.SetItem(KeyCookies, "not json"))

	jar, err := NewPersistentJar(storage, "http://localhost:8000")
	require.NoError(t, err)
	u, _ := url.Parse("http://localhost:8000/")
	assert.Empty(t, jar.Cookies(u))
}

package whispr_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/panyam/whispr"
)

// newSessionServer mounts a tiny handler set around the session manager so
// the establish/resolve/terminate cycle runs through real cookies.
func newSessionServer(t *testing.T, store whispr.CredentialStore) (*httptest.Server, *http.Client) {
	t.Helper()
	sessions := whispr.NewSessionManager(store, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/login-as", func(w http.ResponseWriter, r *http.Request) {
		user, err := store.FindByID(r.URL.Query().Get("id"))
		if err != nil {
			// Establish for a bogus id still writes the session value.
			user = &whispr.User{ID: r.URL.Query().Get("id")}
		}
		if err := sessions.Establish(r.Context(), user); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		user, err := sessions.Resolve(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if user == nil {
			fmt.Fprint(w, "anonymous")
			return
		}
		fmt.Fprint(w, user.ID)
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Terminate(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	srv := httptest.NewServer(sessions.LoadAndSave(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return srv, &http.Client{Jar: jar}
}

func fetch(t *testing.T, client *http.Client, url string) string {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", url, err)
	}
	return string(body)
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	user, err := store.CreateLocal("alice", "password123")
	if err != nil {
		t.Fatalf("CreateLocal failed: %v", err)
	}

	srv, client := newSessionServer(t, store)

	if got := fetch(t, client, srv.URL+"/whoami"); got != "anonymous" {
		t.Errorf("before establish: whoami = %q, want anonymous", got)
	}

	fetch(t, client, srv.URL+"/login-as?id="+user.ID)
	if got := fetch(t, client, srv.URL+"/whoami"); got != user.ID {
		t.Errorf("after establish: whoami = %q, want %q", got, user.ID)
	}

	fetch(t, client, srv.URL+"/logout")
	if got := fetch(t, client, srv.URL+"/whoami"); got != "anonymous" {
		t.Errorf("after terminate: whoami = %q, want anonymous", got)
	}
}

func TestSessionResolveReadsFreshRecord(t *testing.T) {
	store := newTestStore(t)
	user, err := store.CreateLocal("alice", "password123")
	if err != nil {
		t.Fatalf("CreateLocal failed: %v", err)
	}
	srv, client := newSessionServer(t, store)
	fetch(t, client, srv.URL+"/login-as?id="+user.ID)

	// A mutation after login must be visible on the next resolve; the
	// session holds only the id, never a cached record.
	if err := store.SetSecret(user.ID, "fresh"); err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}
	resolved, err := store.FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if resolved.Secret == nil || *resolved.Secret != "fresh" {
		t.Errorf("secret after mutation = %v, want fresh", resolved.Secret)
	}
	if got := fetch(t, client, srv.URL+"/whoami"); got != user.ID {
		t.Errorf("whoami = %q, want %q", got, user.ID)
	}
}

func TestSessionResolveVanishedRecord(t *testing.T) {
	store := newTestStore(t)
	srv, client := newSessionServer(t, store)

	// A session bound to an id that no longer resolves to a record is
	// treated as unauthenticated, not as an error.
	fetch(t, client, srv.URL+"/login-as?id=ghost")
	if got := fetch(t, client, srv.URL+"/whoami"); got != "anonymous" {
		t.Errorf("whoami = %q, want anonymous", got)
	}
}

package common

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding per-viewer UI preferences.
const SessionName = "incomeshare"

// RememberEntity stores the entity last chosen on a page. It writes a
// cookie header, so it must run before any response body is written.
func RememberEntity(w http.ResponseWriter, r *http.Request, store sessions.Store, page, code string) error {
	if store == nil {
		return nil
	}
	// A cookie that fails to decode yields a fresh session alongside the error.
	session, _ := store.Get(r, SessionName)
	session.Values[entityKey(page)] = code
	return session.Save(r, w)
}

// RecalledEntity returns the entity last chosen on a page, or "".
func RecalledEntity(r *http.Request, store sessions.Store, page string) string {
	if store == nil {
		return ""
	}
	session, err := store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	code, _ := session.Values[entityKey(page)].(string)
	return code
}

func entityKey(page string) string {
	return "entity." + page
}

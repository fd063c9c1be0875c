package creds

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestCheckAll(t *testing.T) {
	dir := t.TempDir()
	cookiesPath := filepath.Join(dir, "cookies.txt")
	credsPath := filepath.Join(dir, "credentials.json")
	tokenPath := filepath.Join(dir, "token.json")

	t.Run("all missing", func(t *testing.T) {
		statuses := CheckAll(cookiesPath, credsPath, tokenPath)
		if len(statuses) != 3 {
			t.Fatalf("statuses = %d, want 3", len(statuses))
		}
		for _, s := range statuses {
			if s.Exists || s.Valid {
				t.Errorf("%s: Exists=%v Valid=%v, want both false", s.Name, s.Exists, s.Valid)
			}
		}
	})

	// 只有注释的 Cookie 文件不算配置好
	if err := os.WriteFile(cookiesPath, []byte("# Netscape HTTP Cookie File\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Run("comment-only cookies", func(t *testing.T) {
		s := checkCookies(cookiesPath)
		if !s.Exists || s.Valid {
			t.Errorf("Exists=%v Valid=%v, want exists but invalid", s.Exists, s.Valid)
		}
	})

	if err := os.WriteFile(cookiesPath, []byte("# header\n.xhs.com\tTRUE\t/\tTRUE\t0\tweb_session\tv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Run("valid cookies", func(t *testing.T) {
		if s := checkCookies(cookiesPath); !s.Valid {
			t.Errorf("Valid = false, want true: %s", s.Message)
		}
	})

	if err := os.WriteFile(credsPath, []byte(`{"something":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Run("wrong client secret shape", func(t *testing.T) {
		if s := checkClientSecret(credsPath); s.Valid {
			t.Error("Valid = true, want false for missing installed/web key")
		}
	})

	if err := os.WriteFile(credsPath, []byte(`{"installed":{"client_id":"x"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Run("valid client secret", func(t *testing.T) {
		if s := checkClientSecret(credsPath); !s.Valid {
			t.Errorf("Valid = false, want true: %s", s.Message)
		}
	})

	expired, _ := json.Marshal(oauth2.Token{
		AccessToken:  "a",
		RefreshToken: "r",
		Expiry:       time.Now().Add(-time.Hour),
	})
	if err := os.WriteFile(tokenPath, expired, 0600); err != nil {
		t.Fatal(err)
	}
	t.Run("expired token with refresh", func(t *testing.T) {
		s := checkToken(tokenPath)
		if !s.Exists || s.Valid {
			t.Errorf("Exists=%v Valid=%v, want exists but invalid", s.Exists, s.Valid)
		}
	})

	fresh, _ := json.Marshal(oauth2.Token{
		AccessToken: "a",
		Expiry:      time.Now().Add(time.Hour),
	})
	if err := os.WriteFile(tokenPath, fresh, 0600); err != nil {
		t.Fatal(err)
	}
	t.Run("valid token", func(t *testing.T) {
		if s := checkToken(tokenPath); !s.Valid {
			t.Errorf("Valid = false, want true: %s", s.Message)
		}
	})
}

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notekeeper/auth"
	"notekeeper/client"
	"notekeeper/db/dbtest"
	"notekeeper/handlers"
	"notekeeper/service"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "notekeeper")
}

func Test_cfgDir_And_Paths(t *testing.T) {
	base := withTmpConfig(t)
	if got := cfgDir(); got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasPrefix(tokenPath(), base) || !strings.HasSuffix(tokenPath(), "token.json") {
		t.Fatalf("tokenPath unexpected: %s", tokenPath())
	}
}

func Test_token_SaveLoad(t *testing.T) {
	_ = withTmpConfig(t)

	if _, err := loadToken(); err == nil {
		t.Fatalf("expected error when token file missing")
	}
	if err := saveToken("tok", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	tok, err := loadToken()
	if err != nil || tok != "tok" {
		t.Fatalf("loadToken: tok=%q err=%v", tok, err)
	}
	info, err := os.Stat(tokenPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	if err := saveToken("tok2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("saveToken expired: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("want error for expired token")
	}

	require.NoError(t, removeToken())
	require.NoError(t, removeToken())
}

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	_ = withTmpConfig(t)

	store := dbtest.New(t)
	tokens := auth.NewTokens([]byte("cli-test-secret"), "notekeeper", "", 2*time.Hour)
	authSvc := service.NewAuthService(store, tokens)
	_, err := authSvc.Register(context.Background(), "admin", "1234")
	require.NoError(t, err)

	h := handlers.New(authSvc, service.NewNoteService(store, nil), service.NewCategoryService(store),
		service.NewLinkService(store), store, zap.NewNop())
	srv := httptest.NewServer(handlers.NewRouter(h, handlers.RouterConfig{Tokens: tokens, Log: zap.NewNop()}))
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	return &app{api: client.New(srv.URL+"/api", srv.Client()), out: out}, out
}

// exec runs one command on a fresh app sharing the server and token file,
// the way separate CLI invocations would.
func exec(t *testing.T, base *app, out *bytes.Buffer, args ...string) error {
	t.Helper()
	out.Reset()
	a := &app{api: base.api.WithToken(""), out: out}
	return a.run(context.Background(), args[0], args[1:])
}

func TestCLIFlow(t *testing.T) {
	base, out := newTestApp(t)

	err := exec(t, base, out, "notes")
	require.Error(t, err, "token required")

	err = exec(t, base, out, "login", "-u", "admin", "-p", "wrong")
	var fe *flashError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "invalid credentials", fe.msg)

	require.NoError(t, exec(t, base, out, "login", "-u", "admin", "-p", "1234"))
	assert.Contains(t, out.String(), "logged in")

	require.NoError(t, exec(t, base, out, "category-add", "-name", "Work"))
	assert.Contains(t, out.String(), "Work")

	require.NoError(t, exec(t, base, out, "new", "-title", "Report", "-content", "numbers", "-categories", "Work"))
	assert.Contains(t, out.String(), "Report")
	assert.Contains(t, out.String(), "Work")

	require.NoError(t, exec(t, base, out, "notes", "-q", "NUMB"))
	line := strings.TrimSpace(out.String())
	noteID := strings.Fields(line)[0]

	require.NoError(t, exec(t, base, out, "notes", "-q", "nothing"))
	assert.Equal(t, "no notes\n", out.String())

	err = exec(t, base, out, "category-rm", "-id", categoryID(t, base, out, "Work"))
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "error deleting category", fe.msg)

	require.NoError(t, exec(t, base, out, "edit", "-id", noteID, "-title", "Report v2"))
	require.NoError(t, exec(t, base, out, "show", "-id", noteID))
	assert.Contains(t, out.String(), "Report v2")
	assert.Contains(t, out.String(), "numbers")

	require.NoError(t, exec(t, base, out, "assign", "-id", noteID, "-categories", ""))
	require.NoError(t, exec(t, base, out, "assign", "-id", noteID, "-categories", "Work", "-atomic"))
	require.NoError(t, exec(t, base, out, "notes", "-category", "Work"))
	assert.Contains(t, out.String(), "Report v2")

	require.NoError(t, exec(t, base, out, "archive", "-id", noteID))
	assert.Equal(t, "no notes\n", out.String())
	require.NoError(t, exec(t, base, out, "notes", "-archived"))
	assert.Contains(t, out.String(), "Report v2")
	require.NoError(t, exec(t, base, out, "unarchive", "-id", noteID))

	require.NoError(t, exec(t, base, out, "rm", "-id", noteID))
	assert.Equal(t, "no notes\n", out.String())
	require.NoError(t, exec(t, base, out, "category-rm", "-id", categoryID(t, base, out, "Work")))
	assert.Equal(t, "no categories\n", out.String())

	err = exec(t, base, out, "assign", "-id", noteID, "-categories", "Ghost")
	assert.EqualError(t, err, `unknown category "Ghost"`)

	require.NoError(t, exec(t, base, out, "logout"))
	_, err = loadToken()
	assert.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	base, out := newTestApp(t)
	require.NoError(t, saveToken("tok", time.Now().Add(time.Hour)))

	err := exec(t, base, out, "frobnicate")
	assert.EqualError(t, err, `unknown command "frobnicate"`)
}

func TestNotesBlankCategoryFilter(t *testing.T) {
	base, out := newTestApp(t)
	require.NoError(t, exec(t, base, out, "login", "-u", "admin", "-p", "1234"))

	for _, filter := range []string{",", " , ,"} {
		err := exec(t, base, out, "notes", "-category", filter)
		assert.EqualError(t, err, "-category needs a name or id", filter)
	}
}

func TestFlashError(t *testing.T) {
	inner := errors.New("api: 500 internal error")
	a := &app{}
	err := a.fail("error saving note", inner)

	assert.Equal(t, "error saving note: api: 500 internal error", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "error saving note", a.state.Flash)
}

func categoryID(t *testing.T, base *app, out *bytes.Buffer, name string) string {
	t.Helper()
	require.NoError(t, exec(t, base, out, "categories"))
	for _, line := range strings.Split(out.String(), "\n") {
		f := strings.Fields(line)
		if len(f) >= 2 && f[1] == name {
			return f[0]
		}
	}
	t.Fatalf("category %q not listed in %q", name, out.String())
	return ""
}

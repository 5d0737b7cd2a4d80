// Command notes is a command-line client for the notes API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gofrs/uuid/v5"

	"notekeeper/client"
	"notekeeper/models"
)

// ---- token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "notekeeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notekeeper")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{AccessToken: tok, ExpiresAt: exp}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath(), b, 0o600)
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", errors.New("not logged in")
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

func removeToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- app ----

type app struct {
	api   *client.Client
	state client.State
	out   io.Writer
}

// flashError is a failure with the short message shown to the user.
type flashError struct {
	msg string
	err error
}

func (e *flashError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *flashError) Unwrap() error { return e.err }

func (a *app) fail(msg string, err error) error {
	a.state.Fail(msg)
	return &flashError{msg: msg, err: err}
}

func usage() {
	fmt.Fprintf(os.Stderr, `notes CLI
Usage:
  notes [-addr URL] <cmd> [args]

Commands:
  version
  login            -u <username> -p <password>      (saves token)
  logout
  notes            [-archived] [-q text] [-category name|id]
  show             -id <uuid>
  new              -title <t> [-content <c>] [-categories a,b]
  edit             -id <uuid> [-title <t>] [-content <c>] [-categories a,b]
  rm               -id <uuid>
  archive          -id <uuid>
  unarchive        -id <uuid>
  categories
  category-add     -name <name>
  category-rename  -id <uuid> -name <name>
  category-rm      -id <uuid>
  assign           -id <uuid> -categories a,b [-atomic]
`)
	os.Exit(2)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	addr := flag.String("addr", envOr("NOTES_API", "http://localhost:3002/api"), "API base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &app{api: client.New(*addr, nil), out: os.Stdout}
	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// run executes one subcommand. Every command except login, logout and version
// needs a saved token.
func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "version":
		fmt.Fprintf(a.out, "notes %s (%s)\n", version, buildDate)
		return nil
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.state.Reset()
		if err := removeToken(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "logged out")
		return nil
	}

	tok, err := loadToken()
	if err != nil {
		return err
	}
	a.state.Token = tok
	a.api = a.api.WithToken(tok)

	switch cmd {
	case "notes":
		return a.listNotes(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "new":
		return a.newNote(ctx, args)
	case "edit":
		return a.editNote(ctx, args)
	case "rm":
		return a.noteAction(ctx, "rm", args, "error deleting note", a.api.DeleteNote)
	case "archive":
		return a.noteAction(ctx, "archive", args, "error archiving note", a.api.ArchiveNote)
	case "unarchive":
		return a.noteAction(ctx, "unarchive", args, "error unarchiving note", a.api.UnarchiveNote)
	case "categories":
		return a.listCategories(ctx)
	case "category-add":
		return a.addCategory(ctx, args)
	case "category-rename":
		return a.renameCategory(ctx, args)
	case "category-rm":
		return a.removeCategory(ctx, args)
	case "assign":
		return a.assign(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *u == "" || *p == "" {
		return errors.New("need -u and -p")
	}

	tok, exp, err := a.api.Login(ctx, *u, *p)
	if err != nil {
		return a.fail("invalid credentials", err)
	}
	if err := saveToken(tok, exp); err != nil {
		return err
	}
	a.state.Token = tok
	fmt.Fprintf(a.out, "logged in, token valid until %s\n", exp.Local().Format(time.RFC3339))
	return nil
}

func (a *app) listNotes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notes", flag.ContinueOnError)
	fs.BoolVar(&a.state.ShowArchived, "archived", false, "show archived notes")
	fs.StringVar(&a.state.Query, "q", "", "search title and content")
	category := fs.String("category", "", "only notes in this category (name or id)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.state.Refresh(ctx, a.api); err != nil {
		return a.fail(a.state.Flash, err)
	}
	if *category != "" {
		ids, err := a.resolveCategories(*category)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return errors.New("-category needs a name or id")
		}
		a.state.CategoryFilter = ids[0]
	}
	a.printNotes()
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	id, err := idFlag("show", args)
	if err != nil {
		return err
	}
	note, err := a.api.Note(ctx, id)
	if err != nil {
		return a.fail("error loading note", err)
	}
	status := "active"
	if note.Archived {
		status = "archived"
	}
	fmt.Fprintf(a.out, "%s\n%s\n\n%s\n\n", note.Title, strings.Repeat("=", len(note.Title)), note.Content)
	fmt.Fprintf(a.out, "id:         %s\nstatus:     %s\ncategories: %s\ncreated:    %s\nupdated:    %s\n",
		note.ID, status, categoryNames(note), note.CreatedAt.Local().Format(time.RFC3339),
		note.UpdatedAt.Local().Format(time.RFC3339))
	return nil
}

func (a *app) newNote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	title := fs.String("title", "", "title")
	content := fs.String("content", "", "content")
	cats := fs.String("categories", "", "comma separated category names or ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.state.Refresh(ctx, a.api); err != nil {
		return a.fail(a.state.Flash, err)
	}
	desired, err := a.resolveCategories(*cats)
	if err != nil {
		return err
	}

	note, err := a.api.CreateNote(ctx, *title, *content)
	if err != nil {
		return a.fail("error saving note", err)
	}
	if len(desired) > 0 {
		if err := a.api.SyncCategories(ctx, note.ID, desired); err != nil {
			return a.fail("error saving note", err)
		}
	}
	return a.refreshAndPrint(ctx)
}

func (a *app) editNote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	idStr := fs.String("id", "", "note id")
	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new content")
	cats := fs.String("categories", "", "comma separated category names or ids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := uuid.FromString(*idStr)
	if err != nil {
		return errors.New("need a valid -id")
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	note, err := a.api.Note(ctx, id)
	if err != nil {
		return a.fail("error loading note", err)
	}
	if set["title"] {
		note.Title = *title
	}
	if set["content"] {
		note.Content = *content
	}
	if err := a.api.UpdateNote(ctx, id, note.Title, note.Content, note.Archived); err != nil {
		return a.fail("error saving note", err)
	}

	if set["categories"] {
		if err := a.state.Refresh(ctx, a.api); err != nil {
			return a.fail(a.state.Flash, err)
		}
		desired, err := a.resolveCategories(*cats)
		if err != nil {
			return err
		}
		if err := a.api.SyncCategories(ctx, id, desired); err != nil {
			return a.fail("error saving note", err)
		}
	}
	return a.refreshAndPrint(ctx)
}

func (a *app) noteAction(ctx context.Context, name string, args []string, msg string,
	call func(context.Context, uuid.UUID) error) error {
	id, err := idFlag(name, args)
	if err != nil {
		return err
	}
	if err := call(ctx, id); err != nil {
		return a.fail(msg, err)
	}
	return a.refreshAndPrint(ctx)
}

func (a *app) listCategories(ctx context.Context) error {
	if err := a.state.Refresh(ctx, a.api); err != nil {
		return a.fail(a.state.Flash, err)
	}
	a.printCategories()
	return nil
}

func (a *app) addCategory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("category-add", flag.ContinueOnError)
	name := fs.String("name", "", "category name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.api.CreateCategory(ctx, *name); err != nil {
		return a.fail("error creating category", err)
	}
	return a.listCategories(ctx)
}

func (a *app) renameCategory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("category-rename", flag.ContinueOnError)
	idStr := fs.String("id", "", "category id")
	name := fs.String("name", "", "new name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := uuid.FromString(*idStr)
	if err != nil {
		return errors.New("need a valid -id")
	}
	if err := a.api.UpdateCategory(ctx, id, *name); err != nil {
		return a.fail("error editing category", err)
	}
	return a.listCategories(ctx)
}

func (a *app) removeCategory(ctx context.Context, args []string) error {
	id, err := idFlag("category-rm", args)
	if err != nil {
		return err
	}
	if err := a.api.DeleteCategory(ctx, id); err != nil {
		return a.fail("error deleting category", err)
	}
	return a.listCategories(ctx)
}

func (a *app) assign(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ContinueOnError)
	idStr := fs.String("id", "", "note id")
	cats := fs.String("categories", "", "comma separated category names or ids; empty clears")
	atomic := fs.Bool("atomic", false, "replace in one server-side transaction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := uuid.FromString(*idStr)
	if err != nil {
		return errors.New("need a valid -id")
	}

	if err := a.state.Refresh(ctx, a.api); err != nil {
		return a.fail(a.state.Flash, err)
	}
	desired, err := a.resolveCategories(*cats)
	if err != nil {
		return err
	}

	if *atomic {
		err = a.api.ReplaceNoteCategories(ctx, id, desired)
	} else {
		err = a.api.SyncCategories(ctx, id, desired)
	}
	if err != nil {
		return a.fail("error assigning categories", err)
	}
	return a.refreshAndPrint(ctx)
}

// refreshAndPrint re-reads the whole view after a mutation.
func (a *app) refreshAndPrint(ctx context.Context) error {
	if err := a.state.Refresh(ctx, a.api); err != nil {
		return a.fail(a.state.Flash, err)
	}
	a.printNotes()
	return nil
}

// resolveCategories maps a comma separated list of names or ids onto the
// loaded categories.
func (a *app) resolveCategories(list string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		found := false
		for _, c := range a.state.Categories {
			if c.Name == item || c.ID.String() == item {
				ids = append(ids, c.ID)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown category %q", item)
		}
	}
	return ids, nil
}

func (a *app) printNotes() {
	notes := a.state.Visible()
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "no notes")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.Title, categoryNames(&n))
	}
	_ = tw.Flush()
}

func (a *app) printCategories() {
	if len(a.state.Categories) == 0 {
		fmt.Fprintln(a.out, "no categories")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range a.state.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, c.Name, a.state.NoteCount(c.ID))
	}
	_ = tw.Flush()
}

func categoryNames(n *models.Note) string {
	names := make([]string, 0, len(n.NoteCategories))
	for _, nc := range n.NoteCategories {
		names = append(names, nc.Category.Name)
	}
	return strings.Join(names, ", ")
}

func idFlag(name string, args []string) (uuid.UUID, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	idStr := fs.String("id", "", "id")
	if err := fs.Parse(args); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.FromString(*idStr)
	if err != nil {
		return uuid.Nil, errors.New("need a valid -id")
	}
	return id, nil
}

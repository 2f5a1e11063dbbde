package foreign

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"tails/internal/object"
	"tails/internal/parser"
	"testing"
	"time"
)

func newHTTPServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name": "tails", "roles": ["admin"]}`)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, "%s %s|%s", r.Method, r.Header.Get("Content-Type"), body)
	})
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.Header.Get("Authorization"))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.URL.Query().Get("q"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such thing", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRequests(t *testing.T) {
	srv := newHTTPServer(t)
	vars := map[string]object.Object{"base": str(srv.URL)}

	tests := []struct {
		input    string
		expected string
	}{
		{"~r is get \"`~base`/user\"\n~r.body.name", "tails"},
		{"~r is get \"`~base`/user\"\n~r.body.roles", "[admin]"},
		{"~r is get \"`~base`/user\"\n~r.status", "200"},
		{"~r is get \"`~base`/user\"\n~r.ok", "true"},
		{"~r is post(\"`~base`/echo\", {body: {a: 1}})\n~r.body_text", `POST application/json|{"a":1}`},
		{"~r is put(\"`~base`/echo\", {body: \"raw\"})\n~r.body_text", "PUT |raw"},
		{"~r is http(\"delete\", \"`~base`/echo\")\n~r.body_text", "DELETE |"},
		{"~r is get(\"`~base`/auth\", {bearer_token: \"t0k\"})\n~r.body_text", "Bearer t0k"},
		{"~r is get(\"`~base`/auth\", {basic_auth: {username: \"u\", password: \"p\"}})\n~r.body_text", "Basic dTpw"},
		{"~r is get(\"`~base`/search\", {query: {q: \"a b\"}})\n~r.body_text", "a b"},
		{"attempt (\n  get \"`~base`/missing\"\n) rescue ~e (\n  ~e.code\n)", "404"},
		{"attempt (\n  get \"`~base`/missing\"\n) rescue ~e (\n  ~e.message\n)", "HTTP 404 Not Found"},
		{"attempt (\n  get(\"`~base`/slow\", {timeout: 20})\n) rescue ~e (\n  ~e.code\n)", "timeout"},
		{"attempt (\n  http(\"TRACE\", \"`~base`/echo\")\n) rescue ~e (\n  ~e.code\n)", "unsupported_method"},
	}

	for i, tt := range tests {
		expectEvalWith(t, i, tt.input, vars, tt.expected)
	}
}

func TestHTTPArgumentErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"get()", "get requires at least a URL argument"},
		{"get 1", "get URL must be a string"},
		{`http("GET")`, "http requires method and URL arguments"},
		{`get("http://localhost", {headers: {x: 1}})`, "Header 'x' must be a string"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}

func TestFileFunctions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	vars := map[string]object.Object{
		"dir":     str(dir),
		"path":    str(path),
		"missing": str(filepath.Join(dir, "missing.txt")),
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~w is write(~path, \"hello\")\n~w.bytes_written", "5"},
		{"write(~path, \"hello\")\n~r is read ~path\n~r.content", "hello"},
		{"write(~path, [1, 2])\n~r is read ~path\n~r.content", "[1, 2]"},
		{"write(~path, \"hello\")\nfile-size ~path", "5"},
		{"write(~path, \"hello\")\nfile-exists ~path", "true"},
		{"file-exists ~dir", "false"},
		{"dir-exists ~dir", "true"},
		{"dir-exists ~missing", "false"},
		{"~r is read ~missing\n~r.exists", "false"},
		{"~r is read ~missing\n~r.error", "File not found"},
	}

	for i, tt := range tests {
		expectEvalWith(t, i, tt.input, vars, tt.expected)
	}
}

func TestWriteFailureIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "f.txt")
	got, err := evalWith(t, "~w is write(~path, \"x\")\n~w.success", map[string]object.Object{"path": str(path)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Inspect() != "false" {
		t.Fatalf("expected success to be false, got %s", got.Inspect())
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("file should not exist")
	}
}

func TestSystemFunctions(t *testing.T) {
	t.Setenv("TAILS_TEST_VALUE", "present")

	tests := []struct {
		input    string
		expected string
	}{
		{"~r is run \"echo hi\"\n~r.output", "hi\n"},
		{"~r is run \"exit 3\"\n~r.exit_code", "3"},
		{"~r is run \"echo out; echo err 1>&2\"\n~r.output", "out\n\nerr\n"},
		{`env "TAILS_TEST_VALUE"`, "present"},
		{`env "TAILS_TEST_UNSET_VALUE"`, "null"},
		{"wait 0", "null"},
	}

	for i, tt := range tests {
		expectEvalWith(t, i, tt.input, nil, tt.expected)
	}
}

func TestSystemErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"run()", "run requires a command argument"},
		{"run 1", "run command must be a string"},
		{"wait(-1)", "wait duration cannot be negative"},
		{`wait "soon"`, "wait duration must be a number"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}

const sqliteSetup = `~db is db-connect("sqlite3", ":memory:")
db-exec(~db, "CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT)")
db-exec(~db, "INSERT INTO people (name) VALUES (?)", ["ada"])
~last is db-exec(~db, "INSERT INTO people (name) VALUES (?)", ["grace"])
`

func TestDatabaseFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"~last.last_insert_id", "2"},
		{"~last.rows_affected", "1"},
		{`db-query(~db, "SELECT id, name FROM people ORDER BY id")`, "[{id: 1, name: ada}, {id: 2, name: grace}]"},
		{`db-query(~db, "SELECT name FROM people WHERE id = ?", [2])`, "[{name: grace}]"},
		{`db-query(~db, "SELECT name FROM people WHERE id = 99")`, "[]"},
		{"db-begin ~db\n" +
			`db-exec(~db, "DELETE FROM people")` + "\n" +
			"db-rollback ~db\n" +
			`db-query(~db, "SELECT count(*) AS n FROM people")`, "[{n: 2}]"},
		{"db-begin ~db\n" +
			`db-exec(~db, "DELETE FROM people WHERE id = 1")` + "\n" +
			"db-commit ~db\n" +
			`db-query(~db, "SELECT count(*) AS n FROM people")`, "[{n: 1}]"},
		{"db-close ~db", "null"},
	}

	for i, tt := range tests {
		expectEval(t, i, sqliteSetup+tt.input, tt.expected)
	}
}

func TestDatabaseErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`db-query(99, "SELECT 1")`, "db-query: invalid connection handle 99"},
		{sqliteSetup + "db-commit ~db", "db-commit: no transaction in progress"},
		{sqliteSetup + "db-begin ~db\ndb-begin ~db", "db-begin: transaction already in progress"},
		{sqliteSetup + "db-close ~db\ndb-query(~db, \"SELECT 1\")", "invalid connection handle"},
		{sqliteSetup + `db-exec(~db, "INSERT INTO nowhere VALUES (1)")`, "db-exec: exec failed"},
		{`db-connect("nosuchdriver", "x")`, "db-connect: failed to open connection"},
	}

	for i, tt := range tests {
		expectEvalError(t, i, tt.input, tt.expected)
	}
}

func TestRegistryCloseReleasesConnections(t *testing.T) {
	ev, r := newTestEvaluator(t, &bytes.Buffer{})
	program, err := parser.Parse("db-connect(\"sqlite3\", \":memory:\")\ndb-connect(\"sqlite3\", \":memory:\")", ev)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := ev.EvalProgram(program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.databases.len() != 2 {
		t.Fatalf("expected 2 open connections, got %d", r.databases.len())
	}
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.databases.len() != 0 {
		t.Fatalf("expected no open connections, got %d", r.databases.len())
	}
}

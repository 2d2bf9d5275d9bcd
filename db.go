package main

import (
	"context"
	"database/sql"
	_ "embed"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "pgx"
)

var (
	//go:embed schema.sql
	sqliteSchema string

	//go:embed schema_postgres.sql
	postgresSchema string
)

// Store is the credential and post store. Queries are written with ?
// placeholders and rebound for drivers that number them.
type Store struct {
	db     *sql.DB
	driver string
}

func openDB(driver, dsn string) (*Store, error) {
	switch driver {
	case driverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on&_busy_timeout=5000"
		}
	case driverPostgres:
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// Fast fail if unreachable
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema drops and recreates all tables.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == driverPostgres {
		schema = postgresSchema
	}
	_, err := s.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "init schema")
}

func (s *Store) rebind(query string) string {
	if s.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) getUser(ctx context.Context, where string, arg interface{}) (*User, error) {
	var u User
	err := s.queryRow(ctx, `SELECT id, username, password FROM "user" WHERE `+where+` = ?`, arg).
		Scan(&u.ID, &u.Username, &u.PwHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get user by %s", where)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var id int64
	err := s.queryRow(ctx, `SELECT id FROM "user" WHERE username = ?`, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "check username")
	}
	return true, nil
}

// CreateUser inserts a user. A concurrent insert of the same username is
// reported as ErrDuplicateUsername by the table's unique constraint.
func (s *Store) CreateUser(ctx context.Context, username, pwHash string) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `INSERT INTO "user" (username, password) VALUES (?, ?) RETURNING id`,
		username, pwHash).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateUsername
	}
	if err != nil {
		return 0, errors.Wrap(err, "create user")
	}
	return id, nil
}

const selectPosts = `
	SELECT p.id, p.title, p.body, p.created, p.author_id, u.username
	FROM post p JOIN "user" u ON p.author_id = u.id`

func scanPost(row interface{ Scan(...interface{}) error }) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Created, &p.AuthorID, &p.Username)
	return &p, err
}

// ListPosts returns every post, most recent first.
func (s *Store) ListPosts(ctx context.Context) ([]*Post, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(selectPosts+` ORDER BY p.created DESC, p.id DESC`))
	if err != nil {
		return nil, errors.Wrap(err, "list posts")
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan post")
		}
		posts = append(posts, p)
	}
	return posts, errors.Wrap(rows.Err(), "list posts")
}

func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	p, err := scanPost(s.queryRow(ctx, selectPosts+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get post %d", id)
	}
	return p, nil
}

func (s *Store) CreatePost(ctx context.Context, authorID int64, title, body string, created time.Time) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `INSERT INTO post (title, body, author_id, created) VALUES (?, ?, ?, ?) RETURNING id`,
		title, body, authorID, created.UTC()).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "create post")
	}
	return id, nil
}

// UpdatePost rewrites title and body only; author and creation time never change.
func (s *Store) UpdatePost(ctx context.Context, id int64, title, body string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`UPDATE post SET title = ?, body = ? WHERE id = ?`), title, body, id)
	return errors.Wrapf(err, "update post %d", id)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

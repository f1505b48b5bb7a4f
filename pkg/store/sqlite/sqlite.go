// Package sqlite keeps catalogue snapshots in a SQLite database. Every
// ingestion pass can be saved as one snapshot; a snapshot is written in a
// single transaction so a failed save leaves no partial catalogue.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/ucc-astro/ucc/pkg/catalogs"
	"github.com/ucc-astro/ucc/pkg/errors"
	"github.com/ucc-astro/ucc/pkg/logging"
)

// Snapshot describes one saved catalogue.
type Snapshot struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Records   int
}

// Store is a snapshot database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path with WAL mode and foreign
// keys enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.WrapIO("open", path, err)
		}
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	records INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	snapshot_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	source_dbs TEXT NOT NULL,
	source_indices TEXT NOT NULL,
	names TEXT NOT NULL,
	ra REAL,
	dec REAL,
	glon REAL,
	glat REAL,
	plx REAL,
	pmra REAL,
	pmde REAL,
	positional_id TEXT NOT NULL,
	fnames TEXT NOT NULL,
	duplicate_fnames TEXT,
	r50 REAL,
	n_members INTEGER,
	fixed_centers INTEGER,
	center_flags TEXT,
	class_a TEXT,
	class_b REAL,
	PRIMARY KEY(snapshot_id, position),
	FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_records_positional_id ON records(positional_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Save stores cat as a new snapshot and returns its id.
func (s *Store) Save(ctx context.Context, source string, cat *catalogs.Catalog) (string, error) {
	if cat == nil {
		return "", &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
	}
	id := ulid.Make().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.WrapIO("write", s.path, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, created_at, records) VALUES (?, ?, ?, ?)`,
		id, source, time.Now().UTC().Format(time.RFC3339Nano), cat.Len(),
	); err != nil {
		return "", errors.WrapIO("write", s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO records (snapshot_id, position, source_dbs, source_indices, names,
	ra, dec, glon, glat, plx, pmra, pmde,
	positional_id, fnames, duplicate_fnames,
	r50, n_members, fixed_centers, center_flags, class_a, class_b)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.WrapIO("write", s.path, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range cat.Records {
		row, err := encodeRow(r)
		if err != nil {
			return "", err
		}
		if _, err := stmt.ExecContext(ctx, append([]any{id, i}, row...)...); err != nil {
			return "", errors.WrapIO("write", s.path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", errors.WrapIO("commit", s.path, err)
	}

	logging.FromContext(ctx).Info().
		Str("snapshot", id).
		Str("source", source).
		Int("records", cat.Len()).
		Msg("Saved catalogue snapshot")
	return id, nil
}

// Load returns the catalogue of snapshot id.
func (s *Store) Load(ctx context.Context, id string) (*catalogs.Catalog, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT records FROM snapshots WHERE id = ?`, id).Scan(&n)
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Resource: "snapshot", ID: id}
	}
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT source_dbs, source_indices, names, ra, dec, glon, glat, plx, pmra, pmde,
	positional_id, fnames, duplicate_fnames,
	r50, n_members, fixed_centers, center_flags, class_a, class_b
FROM records WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}
	defer func() { _ = rows.Close() }()

	cat := &catalogs.Catalog{Records: make([]*catalogs.Record, 0, n)}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		cat.Records = append(cat.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}
	return cat, nil
}

// Latest returns the most recent snapshot and its catalogue.
func (s *Store) Latest(ctx context.Context) (*Snapshot, *catalogs.Catalog, error) {
	list, err := s.list(ctx, `ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return nil, nil, err
	}
	if len(list) == 0 {
		return nil, nil, &errors.NotFoundError{Resource: "snapshot", ID: "latest"}
	}
	cat, err := s.Load(ctx, list[0].ID)
	if err != nil {
		return nil, nil, err
	}
	return &list[0], cat, nil
}

// List returns every snapshot, oldest first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	return s.list(ctx, `ORDER BY id`)
}

// Delete removes a snapshot and its records.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.NotFoundError{Resource: "snapshot", ID: id}
	}
	return nil
}

func (s *Store) list(ctx context.Context, order string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, created_at, records FROM snapshots `+order)
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var created string
		if err := rows.Scan(&snap.ID, &snap.Source, &created, &snap.Records); err != nil {
			return nil, errors.WrapIO("read", s.path, err)
		}
		if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, errors.WrapParse("sqlite", s.path, err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}
	return out, nil
}

func encodeRow(r *catalogs.Record) ([]any, error) {
	lists := make([]string, 4)
	for i, v := range []any{r.SourceDBs, r.SourceIndices, r.Names, r.Fnames} {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		lists[i] = string(data)
	}

	var dups sql.NullString
	if r.DuplicateFnames != nil {
		data, err := json.Marshal(r.DuplicateFnames)
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		dups = sql.NullString{String: string(data), Valid: true}
	}

	// Membership columns are all NULL until the record is validated
	var (
		r50, classB   sql.NullFloat64
		nMembers      sql.NullInt64
		fixed         sql.NullBool
		flags, classA sql.NullString
	)
	if m := r.Membership; m != nil {
		r50, classB = nullable(m.R50), nullable(m.ClassB)
		nMembers = sql.NullInt64{Int64: int64(m.NMembers), Valid: true}
		fixed = sql.NullBool{Bool: m.FixedCenters, Valid: true}
		flags = sql.NullString{String: m.CenterFlags, Valid: true}
		classA = sql.NullString{String: m.ClassA, Valid: true}
	}

	return []any{
		lists[0], lists[1], lists[2],
		nullable(r.RA), nullable(r.Dec), nullable(r.GLON), nullable(r.GLAT),
		nullable(r.Plx), nullable(r.PMRA), nullable(r.PMDE),
		r.PositionalID, lists[3], dups,
		r50, nMembers, fixed, flags, classA, classB,
	}, nil
}

func scanRow(rows *sql.Rows) (*catalogs.Record, error) {
	var (
		dbs, indices, names, fnames string
		ra, dec, glon, glat         sql.NullFloat64
		plx, pmra, pmde             sql.NullFloat64
		dups, flags, classA         sql.NullString
		r50, classB                 sql.NullFloat64
		nMembers                    sql.NullInt64
		fixed                       sql.NullBool
	)
	r := catalogs.NewRecord()
	if err := rows.Scan(&dbs, &indices, &names, &ra, &dec, &glon, &glat, &plx, &pmra, &pmde,
		&r.PositionalID, &fnames, &dups,
		&r50, &nMembers, &fixed, &flags, &classA, &classB); err != nil {
		return nil, errors.WrapIO("read", "", err)
	}

	decode := func(s string, v any) error {
		if err := json.Unmarshal([]byte(s), v); err != nil {
			return errors.WrapParse("json", "", err)
		}
		return nil
	}
	for _, f := range []struct {
		s string
		v any
	}{{dbs, &r.SourceDBs}, {indices, &r.SourceIndices}, {names, &r.Names}, {fnames, &r.Fnames}} {
		if err := decode(f.s, f.v); err != nil {
			return nil, err
		}
	}
	if dups.Valid {
		if err := decode(dups.String, &r.DuplicateFnames); err != nil {
			return nil, err
		}
	}
	if flags.Valid {
		r.Membership = &catalogs.Membership{
			R50:          value(r50),
			NMembers:     int(nMembers.Int64),
			FixedCenters: fixed.Bool,
			CenterFlags:  flags.String,
			ClassA:       classA.String,
			ClassB:       value(classB),
		}
	}

	r.RA, r.Dec, r.GLON, r.GLAT = value(ra), value(dec), value(glon), value(glat)
	r.Plx, r.PMRA, r.PMDE = value(plx), value(pmra), value(pmde)
	return r, nil
}

// nullable maps NaN to NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func value(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

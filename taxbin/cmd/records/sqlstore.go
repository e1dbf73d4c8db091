// Copyright © 2020-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package records

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Schema is shared by the SQLite and PostgreSQL stores.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS cds (
		record_id  TEXT NOT NULL,
		location   TEXT NOT NULL,
		taxon      INTEGER NOT NULL,
		gene       TEXT NOT NULL DEFAULT '',
		product    TEXT NOT NULL DEFAULT '',
		protein_id TEXT NOT NULL DEFAULT '',
		locus_tag  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS cds_record_id ON cds (record_id)`,
	`CREATE TABLE IF NOT EXISTS gi2taxid (
		gi    BIGINT PRIMARY KEY,
		taxid BIGINT NOT NULL
	)`,
}

// SQLStore reads records and GI->taxid pairs from a SQL database.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQLite opens (and creates if needed) a SQLite database.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	return openSQL(ctx, "sqlite", path)
}

// OpenPostgres connects to a PostgreSQL database.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return openSQL(ctx, "pgx", dsn)
}

// Open chooses the store by the DSN: postgres:// or postgresql:// URLs
// go to PostgreSQL, "sqlite:" prefixed or *.db/*.sqlite paths go to
// SQLite, anything else is a CDS table file.
func Open(ctx context.Context, dsn string, gi2taxidFile string) (Store, error) {
	var s Store
	var err error
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s, err = OpenPostgres(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite:"):
		s, err = OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		s, err = OpenSQLite(ctx, dsn)
	default:
		s, err = NewFileStore(dsn, gi2taxidFile)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenTaxIDSource opens a GI->taxid source: a database DSN as in Open,
// or a two-column table file.
func OpenTaxIDSource(ctx context.Context, src string) (Store, error) {
	if isSQL(src) {
		return Open(ctx, src, "")
	}
	s, err := NewFileStore("", src)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func isSQL(dsn string) bool {
	for _, p := range []string{"postgres://", "postgresql://", "sqlite:"} {
		if strings.HasPrefix(dsn, p) {
			return true
		}
	}
	return strings.HasSuffix(dsn, ".db") || strings.HasSuffix(dsn, ".sqlite")
}

func openSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s", driver)
	}
	for _, stmt := range Schema {
		if _, err = db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "create schema")
		}
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// placeholder returns the i-th (1-based) bind parameter.
func (s *SQLStore) placeholder(i int) string {
	if s.driver == "pgx" {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Record implements Store.
func (s *SQLStore) Record(ctx context.Context, accession string) (*Record, error) {
	q := `SELECT location, taxon, gene, product, protein_id, locus_tag FROM cds WHERE record_id = ` +
		s.placeholder(1)
	rows, err := s.db.QueryContext(ctx, q, accession)
	if err != nil {
		return nil, errors.Wrapf(err, "query record %s", accession)
	}
	defer rows.Close()

	raws := make([]RawCds, 0, 64)
	var taxon int64
	for rows.Next() {
		var r RawCds
		if err = rows.Scan(&r.Location, &taxon, &r.Gene, &r.Product, &r.ProteinID, &r.LocusTag); err != nil {
			return nil, errors.Wrapf(err, "scan record %s", accession)
		}
		if taxon > 0 {
			r.Taxon = uint32(taxon)
		}
		raws = append(raws, r)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "query record %s", accession)
	}
	if len(raws) == 0 {
		return nil, ErrRecordNotFound
	}
	return NewRecord(accession, raws), nil
}

// TaxIDs implements Store.
func (s *SQLStore) TaxIDs(ctx context.Context, gis []int) (map[int]uint32, error) {
	m := make(map[int]uint32, len(gis))
	const batch = 500
	for i := 0; i < len(gis); i += batch {
		j := i + batch
		if j > len(gis) {
			j = len(gis)
		}
		if err := s.taxids(ctx, gis[i:j], m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (s *SQLStore) taxids(ctx context.Context, gis []int, m map[int]uint32) error {
	if len(gis) == 0 {
		return nil
	}
	marks := make([]string, len(gis))
	args := make([]interface{}, len(gis))
	for i, gi := range gis {
		marks[i] = s.placeholder(i + 1)
		args[i] = gi
	}
	q := fmt.Sprintf(`SELECT gi, taxid FROM gi2taxid WHERE gi IN (%s)`, strings.Join(marks, ","))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "query gi2taxid")
	}
	defer rows.Close()

	var gi, taxid int64
	for rows.Next() {
		if err = rows.Scan(&gi, &taxid); err != nil {
			return errors.Wrap(err, "scan gi2taxid")
		}
		if taxid <= 0 {
			continue
		}
		m[int(gi)] = uint32(taxid)
	}
	return rows.Err()
}

// AddCds inserts coding regions of a record.
func (s *SQLStore) AddCds(ctx context.Context, recordID string, raws []RawCds) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	q := `INSERT INTO cds (record_id, location, taxon, gene, product, protein_id, locus_tag) VALUES (` +
		strings.Join([]string{s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4),
			s.placeholder(5), s.placeholder(6), s.placeholder(7)}, ",") + `)`
	for _, r := range raws {
		if _, err = tx.ExecContext(ctx, q, recordID, r.Location, int64(r.Taxon),
			r.Gene, r.Product, r.ProteinID, r.LocusTag); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert CDS of %s", recordID)
		}
	}
	return tx.Commit()
}

// AddTaxIDs inserts GI->taxid pairs, replacing existing ones.
func (s *SQLStore) AddTaxIDs(ctx context.Context, gi2taxid map[int]uint32) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	q := `INSERT INTO gi2taxid (gi, taxid) VALUES (` + s.placeholder(1) + `,` + s.placeholder(2) +
		`) ON CONFLICT (gi) DO UPDATE SET taxid = excluded.taxid`
	for gi, taxid := range gi2taxid {
		if _, err = tx.ExecContext(ctx, q, int64(gi), int64(taxid)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert gi2taxid %d", gi)
		}
	}
	return tx.Commit()
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

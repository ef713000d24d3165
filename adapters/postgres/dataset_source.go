package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gradscope/domain/dataset"
	"gradscope/internal"
	"gradscope/internal/errors"
	"gradscope/ports"
)

// datasetSource reads the whole graduates table from Postgres
type datasetSource struct {
	db     *sqlx.DB
	table  string
	logger *internal.Logger
}

// NewDatasetSource creates a source over table. Column names are taken from
// the result set, so the table keeps the dotted headers of the CSV.
func NewDatasetSource(db *sqlx.DB, table string, logger *internal.Logger) ports.DatasetSource {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &datasetSource{db: db, table: table, logger: logger}
}

// Connect opens and pings a Postgres connection.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	return db, nil
}

func (s *datasetSource) Describe() string {
	return fmt.Sprintf("postgres table %s", s.table)
}

func (s *datasetSource) Load(ctx context.Context) (*dataset.RawTable, error) {
	start := time.Now()
	query := fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(s.table))

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.DatasetLoad(fmt.Sprintf("failed to query %s", s.table), err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, errors.DatasetLoad("failed to read column names", err)
	}

	table := &dataset.RawTable{Headers: headers}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, errors.DatasetLoad("failed to scan row", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cellText(v)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatasetLoad("failed to iterate rows", err)
	}

	s.logger.Info("[PostgresSource] Loaded %d rows x %d columns from %s in %s",
		len(table.Rows), len(headers), s.table, time.Since(start).Round(time.Millisecond))
	return table, nil
}

// cellText renders a scanned value the way the CSV reader would see it.
// NULL becomes the empty string, which the normalizer treats as missing.
func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case sql.RawBytes:
		return string(x)
	}
	return fmt.Sprint(v)
}

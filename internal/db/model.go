package db

import "time"

// DocumentRow is one whole collection document stored as jsonb.
type DocumentRow struct {
	tableName struct{} `pg:"documents,alias:t,discard_unknown_columns"`

	Name       string    `pg:"name,pk"`
	Body       string    `pg:"body,type:jsonb,use_zero"`
	Generation int64     `pg:"generation,use_zero"`
	UpdatedAt  time.Time `pg:"updatedAt,use_zero"`
}

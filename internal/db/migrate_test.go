package db

import (
	"testing"

	"github.com/go-pg/pg/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseURL(t *testing.T) {
	t.Run("FromTestURL", func(t *testing.T) {
		opt, err := pg.ParseURL(TestDBURL)
		require.NoError(t, err)

		assert.Equal(t, TestDBURL, DatabaseURL(opt))
	})

	t.Run("EscapesPassword", func(t *testing.T) {
		opt := &pg.Options{
			Addr:     "db:5432",
			User:     "site",
			Password: "p@ss/word",
			Database: "content",
		}

		assert.Equal(t, "postgres://site:p%40ss%2Fword@db:5432/content?sslmode=disable", DatabaseURL(opt))
	})
}

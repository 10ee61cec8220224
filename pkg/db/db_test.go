package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialector(t *testing.T) {
	for dsn, want := range map[string]string{
		"postgres://kahi:pw@localhost:5432/bookings?sslmode=disable":           "postgres",
		"host=localhost user=kahi dbname=bookings sslmode=disable":             "postgres",
		"mysql://kahi:pw@tcp(127.0.0.1:3306)/bookings?parseTime=true":          "mysql",
		"kahi:pw@tcp(127.0.0.1:3306)/bookings?charset=utf8mb4&parseTime=True": "mysql",
	} {
		assert.Equal(t, want, Dialector(dsn).Name(), dsn)
	}
}

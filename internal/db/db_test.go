package db

import (
	"errors"
	"testing"

	"github.com/shinyyama/book-market-backend/internal/config"
)

func TestBuildDSN(t *testing.T) {
	base := config.Config{DBUser: "app", DBPassword: "secret", DBName: "books", DBPort: "3306"}
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "tcp host",
			mutate: func(c *config.Config) { c.DBHost = "db.local" },
			want:   "app:secret@tcp(db.local:3306)/books?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		},
		{
			name:   "already wrapped",
			mutate: func(c *config.Config) { c.DBHost = "tcp(10.0.0.1:3307)" },
			want:   "app:secret@tcp(10.0.0.1:3307)/books?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		},
		{
			name:   "socket path",
			mutate: func(c *config.Config) { c.DBHost = "/var/run/mysqld.sock" },
			want:   "app:secret@unix(/var/run/mysqld.sock)/books?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		},
		{
			name: "cloud sql wins over host",
			mutate: func(c *config.Config) {
				c.DBHost = "ignored"
				c.InstanceConnectionName = "proj:region:inst"
			},
			want: "app:secret@unix(/cloudsql/proj:region:inst)/books?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		},
		{
			name: "postgres default port",
			mutate: func(c *config.Config) {
				c.DBDriver = "postgres"
				c.DBHost = "pg.local"
			},
			want: "host=pg.local port=5432 user=app password=secret dbname=books sslmode=disable TimeZone=UTC",
		},
		{
			name: "postgres explicit port",
			mutate: func(c *config.Config) {
				c.DBDriver = "postgres"
				c.DBHost = "pg.local"
				c.DBPort = "6543"
			},
			want: "host=pg.local port=6543 user=app password=secret dbname=books sslmode=disable TimeZone=UTC",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if got := BuildDSN(&cfg); got != tc.want {
				t.Fatalf("BuildDSN() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "sqlite"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("got %v, want ErrUnsupportedDriver", err)
	}
}

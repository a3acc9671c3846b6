package db

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/go-sql-driver/mysql"
)

// shorthands of DesignSafe research databases
const (
	NGL = "ngl"
	VP  = "vp"
	EQ  = "eq"
)

// drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// public read-only account of DesignSafe databases.
const (
	DefaultUser     = "dspublic"
	DefaultPassword = "R3ad0nlY"
	DefaultHost     = "129.114.52.174"
	DefaultPort     = 3306
)

type known struct {
	database  string
	envPrefix string
}

var shorthands = map[string]known{
	NGL: {database: "sjbrande_ngl_db", envPrefix: "NGL_"},
	VP:  {database: "sjbrande_vpdb", envPrefix: "VP_"},
	EQ:  {database: "post_earthquake_recovery", envPrefix: "EQ_"},
}

// Shorthands returns known database shorthands, sorted.
func Shorthands() []string {
	names := make([]string, 0, len(shorthands))
	for k := range shorthands {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Config is where and how to connect a database.
type Config struct {
	// shorthand, used in logs and errors.
	Name string

	Driver   string
	Database string
	User     string
	Password string
	Host     string
	Port     int
}

// ConfigFor builds Config of a known database.
//
// <PREFIX>DB_USER, <PREFIX>DB_PASSWORD, <PREFIX>DB_HOST and <PREFIX>DB_PORT
// in env override the defaults. nil env means os.Getenv.
func ConfigFor(name string, env func(string) string) (Config, error) {
	k, ok := shorthands[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown database '%s'. allowed: %v", derr.ErrDatabase, name, Shorthands())
	}
	if env == nil {
		env = os.Getenv
	}
	or := func(key string, def string) string {
		if v := env(k.envPrefix + key); v != "" {
			return v
		}
		return def
	}

	port := DefaultPort
	if p := env(k.envPrefix + "DB_PORT"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%w: %sDB_PORT is not a port number: %s", derr.ErrDatabase, k.envPrefix, p)
		}
		port = n
	}

	return Config{
		Name:     name,
		Driver:   DriverMySQL,
		Database: k.database,
		User:     or("DB_USER", DefaultUser),
		Password: or("DB_PASSWORD", DefaultPassword),
		Host:     or("DB_HOST", DefaultHost),
		Port:     port,
	}, nil
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// driverName is the name registered in database/sql.
func (c Config) driverName() (string, error) {
	switch c.Driver {
	case "", DriverMySQL:
		return "mysql", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("%w: unsupported driver '%s'", derr.ErrDatabase, c.Driver)
	}
}

// DSN is the data source name for the driver.
func (c Config) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   c.addr(),
			Path:   "/" + c.Database,
		}
		return u.String()
	default:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = c.addr()
		mc.DBName = c.Database
		mc.ParseTime = true
		return mc.FormatDSN()
	}
}

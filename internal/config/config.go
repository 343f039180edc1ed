package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and paths, ints for
// durations, costs and byte limits.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	BcryptCost     int    // bcrypt cost for password hashing
	SessionTTLMin  int    // session lifetime in minutes
	SecureCookies  bool   // mark the session cookie Secure (HTTPS deployments)
	UploadDir      string // directory that stores uploaded product images
	UploadMaxBytes int64  // per-file size cap for image uploads
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Upload settings have defaults so a bare environment still boots.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		BcryptCost:     mustInt("BCRYPT_COST"),
		SessionTTLMin:  mustInt("SESSION_TTL_MIN"),
		SecureCookies:  os.Getenv("SECURE_COOKIES") == "true",
		UploadDir:      getenv("UPLOAD_DIR", "uploads/products"),
		UploadMaxBytes: int64(atoi(getenv("UPLOAD_MAX_BYTES", "5242880"))), // 5MB
	}
}

// QueueConsumerEnabled reports whether the broker consumer should be
// started. Off by default so environments without RabbitMQ do not log
// a reconnect loop.
func QueueConsumerEnabled() bool {
	return envBool("QUEUE_CONSUMER_ENABLED", false)
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

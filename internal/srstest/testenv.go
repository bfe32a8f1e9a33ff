// Package srstest gates integration tests that need a live SRS server
// behind environment variables, the same shape as the teacher's bot-token
// gated integration suite.
package srstest

import (
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// PerseveranceTime bounds how long an integration test may run against a
// live server before giving up.
const PerseveranceTime = 2 * time.Minute

// Env holds the address of a live SRS server to test against.
type Env struct {
	Host string
	Port int
}

var (
	globalEnv Env
	globalErr error
	once      sync.Once
)

// Must returns the integration environment or skips the calling test if
// it isn't configured.
func Must(t *testing.T) Env {
	e, err := GetEnv()
	if err != nil {
		t.Skip("SRS_TEST_HOST/SRS_TEST_PORT not set, skipping integration test")
	}
	return e
}

// GetEnv reads the integration environment once and caches it.
func GetEnv() (Env, error) {
	once.Do(getEnv)
	return globalEnv, globalErr
}

func getEnv() {
	host := os.Getenv("SRS_TEST_HOST")
	if host == "" {
		globalErr = errors.New("missing $SRS_TEST_HOST")
		return
	}

	portStr := os.Getenv("SRS_TEST_PORT")
	if portStr == "" {
		portStr = "5002"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		globalErr = errors.Wrap(err, "invalid $SRS_TEST_PORT")
		return
	}

	globalEnv = Env{Host: host, Port: port}
}

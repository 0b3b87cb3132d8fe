package internal

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// Envs loads the optional .env files and returns the process environment as a
// map; variables already present in the environment take precedence over the
// files.
func Envs(files ...string) map[string]string {
	_ = godotenv.Load(files...)
	envs := make(map[string]string)
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs
}

// LaunchContext returns a context that's cancelled as soon as a signal is
// received on osSignal (or cancel is called).
func LaunchContext(wg *sync.WaitGroup, osSignal chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
		case <-osSignal:
			cancel()
		}
	}()
	return ctx, cancel
}

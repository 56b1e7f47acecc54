package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local then .env from the working directory.
// godotenv never overwrites variables that are already set, so the OS
// environment wins and .env.local wins over .env. Returns the files loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

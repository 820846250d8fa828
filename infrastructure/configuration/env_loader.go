package configuration

import (
	"errors"
	"io/fs"

	"reelshare/infrastructure/logger"

	"github.com/joho/godotenv"
)

// loadEnvFiles applies each dotenv file that exists. Variables already set in
// the process environment win.
func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.GetLogger().WithField("file", p).WithField("error", err).Warn("Skipping unreadable env file")
			}
			continue
		}
		logger.GetLogger().WithField("file", p).Debug("Loaded env file")
	}
}

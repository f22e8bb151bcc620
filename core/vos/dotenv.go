package vos

import (
	"fmt"
	"sort"

	"github.com/joho/godotenv"
)

// LoadEnvFiles reads dotenv files and sets every variable that isn't already
// present in the environment. Earlier files win over later ones.
func LoadEnvFiles(vos VOS, paths ...string) error {
	for _, path := range paths {
		if err := loadEnvFile(vos, path); err != nil {
			return err
		}
	}
	return nil
}

func loadEnvFile(vos VOS, path string) error {
	fd, err := vos.Fs().Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()

	vars, err := godotenv.Parse(fd)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, alreadySet := vos.LookupEnv(k); alreadySet {
			continue
		}
		if err := vos.Setenv(k, vars[k]); err != nil {
			return err
		}
	}
	return nil
}

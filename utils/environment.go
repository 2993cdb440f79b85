package utils

import "github.com/campushub/campusnews/utils/dotenv"

// IsProdEnv returns true iff the service runs with ENVIRONMENT=prod.
func IsProdEnv() bool {
	return dotenv.Env() == dotenv.ProdEnv
}

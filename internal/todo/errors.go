package todo

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// PersistenceError is the only error the repository raises: a store or
// transaction failure with the original cause preserved for logging. The
// cause must not be leaked to API clients in production.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("todo %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsDuplicateKey classifies a repository error as a unique-constraint
// violation. No todo field is unique per owner today; the classification
// exists so future constraints need no signature changes.
func IsDuplicateKey(err error) bool {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return mongo.IsDuplicateKeyError(err)
}

// Package runtime holds the process-wide dependency injection container.
// It uses uber's dig library to wire services together.
package runtime

import (
	"go.uber.org/dig"
)

// container is the global DI container; other packages register and
// resolve services through it.
var container *dig.Container

func init() {
	container = dig.New()
}

// GetContainer returns the global DI container.
func GetContainer() *dig.Container {
	return container
}

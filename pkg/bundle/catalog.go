package bundle

import (
	"fmt"
	"sync"

	"github.com/hookflow/hookflow/pkg/models"
)

// HandlerCatalog maps handler names to in-process handler functions.
// Bundles reference handlers by name, so the registration pass never has
// to execute arbitrary user code to obtain a callable.
type HandlerCatalog struct {
	mu       sync.RWMutex
	handlers map[string]models.Handler
}

func NewHandlerCatalog() *HandlerCatalog {
	return &HandlerCatalog{
		handlers: make(map[string]models.Handler),
	}
}

// Register binds a handler function to a name. Re-registering a name
// replaces the previous handler.
func (c *HandlerCatalog) Register(name string, handler models.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[name] = handler
}

// Resolve returns the handler bound to name.
func (c *HandlerCatalog) Resolve(name string) (models.Handler, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	handler, ok := c.handlers[name]
	if !ok {
		return nil, fmt.Errorf("handler %q not registered", name)
	}

	return handler, nil
}

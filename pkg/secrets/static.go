package secrets

import "context"

// StaticResolver serves secrets from a fixed map. Intended for tests and
// local development.
type StaticResolver struct {
	values map[string]string
}

func NewStaticResolver(values map[string]string) *StaticResolver {
	return &StaticResolver{values: values}
}

func (r *StaticResolver) Resolve(_ context.Context, name string) (string, error) {
	value, ok := r.values[name]
	if !ok {
		return "", notFound(name)
	}

	return value, nil
}

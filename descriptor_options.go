package versionboard

import "errors"

// descriptorConfig holds mutable state during descriptor construction.
type descriptorConfig struct {
	engineKey string
	ordering  Ordering
	perKey    func(key string) Extractor
}

// DescriptorOption configures a [ServiceDescriptor] during construction.
//
// Built-in options: [WithEngineKey], [WithOrdering], [WithFanOut].
type DescriptorOption func(*descriptorConfig) error

// WithEngineKey sets the key used to look up the service's documentation
// URL in the [DocumentationIndex].
func WithEngineKey(key string) DescriptorOption {
	return func(cfg *descriptorConfig) error {
		cfg.engineKey = key
		return nil
	}
}

// WithOrdering sets how versions are ordered. Defaults to [OrderSource].
//
// Returns an error for an unknown ordering.
func WithOrdering(o Ordering) DescriptorOption {
	return func(cfg *descriptorConfig) error {
		if _, err := ParseOrdering(string(o)); err != nil {
			return err
		}
		cfg.ordering = o
		return nil
	}
}

// WithFanOut turns the descriptor into a fan-out descriptor. Its extractor
// lists keys (e.g. engine names); for every distinct key, sorted ascending,
// perKey supplies the extractor of that key's versions, read from the same
// payload. Each key yields a row group labelled "<name> <key>" whose engine
// key is the key itself.
//
// Example:
//
//	versionboard.NewServiceDescriptor("Amazon Relational Database Service (RDS)",
//	    versionboard.APISource("rds-engine-versions"),
//	    versionboard.EngineNames(),
//	    versionboard.WithFanOut(func(engine string) versionboard.Extractor {
//	        return versionboard.EngineVersions(engine)
//	    }),
//	    versionboard.WithOrdering(versionboard.OrderLexicalDescending),
//	)
//
// Returns an error if perKey is nil.
func WithFanOut(perKey func(key string) Extractor) DescriptorOption {
	return func(cfg *descriptorConfig) error {
		if perKey == nil {
			return errors.New("fan-out extractor factory cannot be nil")
		}
		cfg.perKey = perKey
		return nil
	}
}

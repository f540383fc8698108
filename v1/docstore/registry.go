package docstore

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/Aleph-Alpha/docstore/v1/document"
)

// FullModelName is the registry name of document.FullModel.
const FullModelName = "documents"

type registeredModel struct {
	name      string
	modelType reflect.Type
	opts      []Option
}

var registry = struct {
	sync.RWMutex
	byName map[string]registeredModel
	byType map[reflect.Type]registeredModel
}{
	byName: map[string]registeredModel{},
	byType: map[reflect.Type]registeredModel{},
}

func init() {
	RegisterModel(FullModelName, document.FullModel{}, WithVectorFunction(CosineDistance))
}

// RegisterModel makes model constructible by name through NewFromConfig,
// with opts as its defaults. Registering a name twice replaces the first
// registration.
func RegisterModel(name string, model any, opts ...Option) {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	registry.Lock()
	defer registry.Unlock()
	if old, ok := registry.byName[name]; ok {
		delete(registry.byType, old.modelType)
	}
	r := registeredModel{name: name, modelType: t, opts: opts}
	registry.byName[name] = r
	registry.byType[t] = r
}

// RegisteredModels lists the registered model names, sorted.
func RegisteredModels() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.byName))
	for name := range registry.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupModelType(t reflect.Type) (string, *registeredModel) {
	registry.RLock()
	defer registry.RUnlock()
	r, ok := registry.byType[t]
	if !ok {
		return "", nil
	}
	return r.name, &r
}

func lookupModelName(name string) (*registeredModel, bool) {
	registry.RLock()
	defer registry.RUnlock()
	r, ok := registry.byName[name]
	if !ok {
		return nil, false
	}
	return &r, true
}

// Config is the serializable form of a Store.
type Config struct {
	// Model is a name passed to RegisterModel.
	Model          string   `yaml:"model" json:"model"`
	Language       string   `yaml:"language" json:"language,omitempty"`
	VectorFunction string   `yaml:"vector_function" json:"vector_function,omitempty"`
	FieldMap       FieldMap `yaml:"field_map" json:"field_map"`
}

// Config returns the store's configuration. Model is empty for models
// that were never registered.
func (s *Store) Config() Config {
	return Config{
		Model:          s.modelName,
		Language:       s.opts.language,
		VectorFunction: string(s.opts.vectorFunction),
		FieldMap:       s.opts.fieldMap,
	}
}

// NewFromConfig rebuilds a store from cfg. Settings in cfg override the
// model defaults; opts override both.
func NewFromConfig(conn Conn, cfg Config, opts ...Option) (*Store, error) {
	r, ok := lookupModelName(cfg.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, cfg.Model)
	}

	var fromConfig []Option
	fromConfig = append(fromConfig, WithFieldMap(cfg.FieldMap), WithLanguage(cfg.Language))
	if cfg.VectorFunction != "" {
		fn, err := ParseVectorFunction(cfg.VectorFunction)
		if err != nil {
			return nil, err
		}
		fromConfig = append(fromConfig, WithVectorFunction(fn))
	}

	return New(conn, reflect.New(r.modelType).Interface(), append(fromConfig, opts...)...)
}

package expression

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v2"
)

// ruleFile is the on-disk layout of a registry.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Registry holds the parser rules known to the application.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: map[string]Rule{}}
}

// Add validates rule and stores it, replacing a rule with the same id.
func (r *Registry) Add(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = rule
	return nil
}

// Remove deletes the rule with the given id.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rules[id]
	delete(r.rules, id)
	return ok
}

func (r *Registry) Get(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok
}

// Parser returns a parser for the rule with the given id.
func (r *Registry) Parser(id string) (*Parser, error) {
	rule, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	return NewParser(rule, nil), nil
}

// IDs returns the ids of all rules, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Load adds all rules of a YAML file. Nothing is added if one of the rules is
// invalid.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read parser rules %q: %w", path, err)
	}
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse parser rules %q: %w", path, err)
	}
	for _, rule := range file.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("parser rules %q: %w", path, err)
		}
	}
	for _, rule := range file.Rules {
		if err := r.Add(rule); err != nil {
			return err
		}
	}
	return nil
}

// Save writes all rules, sorted by id, to a YAML file.
func (r *Registry) Save(path string) error {
	var file ruleFile
	for _, id := range r.IDs() {
		rule, _ := r.Get(id)
		file.Rules = append(file.Rules, rule)
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal parser rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write parser rules %q: %w", path, err)
	}
	return nil
}

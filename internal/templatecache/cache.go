// Package templatecache persists the last-submitted strength-workout shape so
// the next entry form can be pre-populated. Values are kept as the strings
// the user submitted, not parsed numbers.
package templatecache

import (
	"context"
	"encoding/json"
	"errors"
)

const keyPrefix = "cycle-strength-logger:last-strength-template:"

// ErrNotFound is returned by KV implementations when no value is stored.
var ErrNotFound = errors.New("template not found")

// KV is the injectable key-value capability backing the cache.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// StoredSet is one remembered set within an exercise.
type StoredSet struct {
	WeightKg string `json:"weightKg"`
	Reps     string `json:"reps"`
}

// StoredExercise is one remembered exercise shape.
type StoredExercise struct {
	Name string      `json:"name"`
	Sets []StoredSet `json:"sets"`
}

// Template is the remembered strength-form shape.
type Template struct {
	PerceivedEffort string           `json:"perceivedEffort,omitempty"`
	Exercises       []StoredExercise `json:"exercises"`
}

// Default returns the template used when nothing usable is cached.
func Default() Template {
	return Template{
		PerceivedEffort: "6",
		Exercises: []StoredExercise{
			{
				Name: "Squat",
				Sets: []StoredSet{{WeightKg: "100", Reps: "5"}},
			},
		},
	}
}

// Cache reads and writes per-user templates through the KV capability.
type Cache struct {
	kv KV
}

// New constructs a Cache.
func New(kv KV) *Cache {
	return &Cache{kv: kv}
}

// Load returns the user's remembered template. Missing or malformed cached
// data is silently ignored and the default template is returned instead.
func (c *Cache) Load(ctx context.Context, userID string) Template {
	raw, err := c.kv.Get(ctx, keyPrefix+userID)
	if err != nil {
		return Default()
	}

	var template Template
	if err := json.Unmarshal([]byte(raw), &template); err != nil {
		return Default()
	}
	if len(template.Exercises) == 0 {
		return Default()
	}
	for _, exercise := range template.Exercises {
		if exercise.Sets == nil {
			return Default()
		}
	}
	return template
}

// Save remembers the submitted shape for the user.
func (c *Cache) Save(ctx context.Context, userID string, template Template) error {
	body, err := json.Marshal(template)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, keyPrefix+userID, string(body))
}

// Package store persists the course collection as a single blob in a
// key-value store. Every mutation is a full read, transform and write.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/skiptrack/internal/kv"
	"github.com/verte-zerg/skiptrack/internal/model"
	"github.com/verte-zerg/skiptrack/internal/validator"
)

// DefaultKey is the key the collection is stored under.
const DefaultKey = "@app/course_list"

// Courses owns the stored course collection.
type Courses struct {
	kv  kv.Store
	key string
	log zerolog.Logger

	// mu serializes read-modify-write cycles issued through this value.
	mu sync.Mutex
}

// New returns a Courses stored under key in st. An empty key selects DefaultKey.
func New(st kv.Store, key string, log zerolog.Logger) *Courses {
	if key == "" {
		key = DefaultKey
	}
	return &Courses{
		kv:  st,
		key: key,
		log: log.With().Str("component", "course_store").Logger(),
	}
}

// Key returns the storage key of the collection.
func (c *Courses) Key() string {
	return c.key
}

// ReadAll returns the stored courses in insertion order. Nothing stored is an
// empty collection. Corrupt content is logged and read as empty.
func (c *Courses) ReadAll(ctx context.Context) ([]model.Course, error) {
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read courses: %w", err)
	}
	doc, err := decode(raw, ok)
	if err != nil {
		var ce *corruptError
		if errors.As(err, &ce) {
			c.log.Warn().Err(ce.err).Str("key", c.key).Msg("ignoring corrupt course list")
			return []model.Course{}, nil
		}
		return nil, err
	}
	return doc.Courses, nil
}

// Add validates course and appends it to the collection. Ids are not checked
// for uniqueness.
func (c *Courses) Add(ctx context.Context, course model.Course) error {
	if err := validateCourse(course); err != nil {
		return err
	}
	return c.mutate(ctx, "add", func(doc *document) error {
		doc.Courses = append(doc.Courses, course)
		doc.NextID = nextIDAfter(doc.Courses, doc.NextID)
		return nil
	})
}

// Create builds a course from a name and credit value, assigns it the next
// id from the stored counter and appends it.
func (c *Courses) Create(ctx context.Context, name string, credits int) (model.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Course{}, validator.Field("name", "name is a required field")
	}
	limit, err := model.CapForCredits(credits)
	if err != nil {
		return model.Course{}, validator.Field("credits", err.Error())
	}

	var created model.Course
	err = c.mutate(ctx, "create", func(doc *document) error {
		if doc.NextID < 1 {
			return ErrIDSpaceExhausted
		}
		created = model.Course{ID: doc.NextID, Name: name, Missed: 0, Cap: limit}
		if err := validateCourse(created); err != nil {
			return err
		}
		doc.Courses = append(doc.Courses, created)
		doc.NextID++
		return nil
	})
	if err != nil {
		return model.Course{}, err
	}
	return created, nil
}

// AdjustCounter adds delta to the missed count of every course with id,
// clamping at zero. A missing id still rewrites the unchanged collection.
func (c *Courses) AdjustCounter(ctx context.Context, id int64, delta int) error {
	return c.mutate(ctx, "adjust", func(doc *document) error {
		for i := range doc.Courses {
			if doc.Courses[i].ID == id {
				doc.Courses[i].Missed = clampedAdd(doc.Courses[i].Missed, delta)
			}
		}
		return nil
	})
}

// Delete removes every course with id, keeping the order of the rest.
func (c *Courses) Delete(ctx context.Context, id int64) error {
	return c.mutate(ctx, "delete", func(doc *document) error {
		kept := doc.Courses[:0]
		for _, course := range doc.Courses {
			if course.ID != id {
				kept = append(kept, course)
			}
		}
		doc.Courses = kept
		return nil
	})
}

// ClearAll resets the backing store to the nothing-stored state. A collection
// written by a newer release is left in place and ErrUnsupportedVersion is
// returned.
func (c *Courses) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("failed to clear courses: %w", err)
	}
	if _, err := decode(raw, ok); errors.Is(err, ErrUnsupportedVersion) {
		return err
	}
	if err := c.kv.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear courses: %w", err)
	}
	c.log.Info().Str("key", c.key).Msg("course list cleared")
	return nil
}

func (c *Courses) mutate(ctx context.Context, op string, fn func(*document) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.update(ctx, fn, false)
	var ce *corruptError
	if errors.As(err, &ce) {
		backupKey := c.key + ".corrupt"
		if serr := c.kv.Set(ctx, backupKey, ce.raw); serr != nil {
			return fmt.Errorf("failed to back up corrupt course list: %w", serr)
		}
		c.log.Warn().Err(ce.err).Str("key", c.key).Str("backup", backupKey).
			Msg("corrupt course list backed up; starting from empty list")
		err = c.update(ctx, fn, true)
	}
	if err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) || errors.Is(err, ErrUnsupportedVersion) {
			return err
		}
		return fmt.Errorf("failed to %s course: %w", op, err)
	}
	c.log.Debug().Str("op", op).Str("key", c.key).Msg("course list written")
	return nil
}

// update runs one read-transform-write, atomically when the store supports it.
func (c *Courses) update(ctx context.Context, fn func(*document) error, resetCorrupt bool) error {
	apply := func(raw string, ok bool) (string, error) {
		doc, err := decode(raw, ok)
		if err != nil {
			var ce *corruptError
			if !resetCorrupt || !errors.As(err, &ce) {
				return "", err
			}
			doc = emptyDocument()
		}
		if err := fn(&doc); err != nil {
			return "", err
		}
		return encode(doc)
	}

	if u, ok := c.kv.(kv.Updater); ok {
		return u.Update(ctx, c.key, apply)
	}
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return err
	}
	next, err := apply(raw, ok)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, c.key, next)
}

func validateCourse(course model.Course) error {
	if strings.TrimSpace(course.Name) == "" {
		return validator.Field("name", "name is a required field")
	}
	if course.ID == math.MaxInt64 {
		return validator.Field("id", fmt.Sprintf("id must be less than %d", int64(math.MaxInt64)))
	}
	return validator.Struct(course)
}

func clampedAdd(missed, delta int) int {
	switch {
	case delta > 0 && missed > math.MaxInt-delta:
		return math.MaxInt
	case delta < 0 && missed < math.MinInt-delta:
		return 0
	}
	sum := missed + delta
	if sum < 0 {
		return 0
	}
	return sum
}

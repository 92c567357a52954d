// Package inspect renders executor snapshots as protobuf structs and JSON,
// for debugging endpoints and logs.
package inspect

import (
	"fmt"

	"github.com/stealthrocket/fiber"
	"github.com/stealthrocket/fiber/ecs"
	"github.com/stealthrocket/fiber/executor"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Option configures how snapshots are rendered.
type Option func(*renderer)

// WithComponentNames names components by the Go type registered in w
// instead of their numeric id.
func WithComponentNames(w *ecs.World) Option {
	return func(r *renderer) {
		r.component = func(id ecs.ComponentID) any {
			if t, ok := w.TypeOf(id); ok {
				return t.String()
			}
			return uint32(id)
		}
	}
}

type renderer struct {
	component func(ecs.ComponentID) any
}

// Struct converts a snapshot to a protobuf struct with a single
// "coroutines" list.
func Struct(infos []executor.Info, options ...Option) (*structpb.Struct, error) {
	r := renderer{component: func(id ecs.ComponentID) any { return uint32(id) }}
	for _, option := range options {
		option(&r)
	}
	s, err := structpb.NewStruct(map[string]any{"coroutines": r.list(infos)})
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	return s, nil
}

// JSON renders a snapshot as JSON.
func JSON(infos []executor.Info, options ...Option) ([]byte, error) {
	s, err := Struct(infos, options...)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

func (r *renderer) list(infos []executor.Info) []any {
	list := make([]any, len(infos))
	for i, info := range infos {
		list[i] = r.info(info)
	}
	return list
}

func (r *renderer) info(info executor.Info) map[string]any {
	m := map[string]any{
		"id":     uint64(info.ID),
		"owner":  info.Owner.String(),
		"index":  info.Index,
		"access": r.access(info.Access),
	}
	switch info.Wait {
	case 0:
		m["wait"] = "new"
	case fiber.Duration:
		m["wait"] = info.Wait.String()
		m["remaining"] = info.Remaining.String()
	case fiber.Children:
		m["wait"] = info.Wait.String()
		m["mode"] = info.Mode.String()
	default:
		m["wait"] = info.Wait.String()
	}
	if len(info.Children) > 0 {
		m["children"] = r.list(info.Children)
	}
	return m
}

func (r *renderer) access(entries []fiber.Access) []any {
	list := make([]any, len(entries))
	for i, a := range entries {
		list[i] = map[string]any{
			"source":    a.Source.String(),
			"component": r.component(a.Component),
			"mode":      a.Mode.String(),
		}
	}
	return list
}

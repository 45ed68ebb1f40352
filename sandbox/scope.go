package sandbox

import (
	"context"
	"fmt"

	"go.starlark.net/starlark"

	"github.com/BaSui01/rlmbox/types"
)

// buildScope constructs the restricted predeclared environment for one
// execution: the frozen context dict, the three context accessors, the
// delegation builtin, and the pre-seeded result slot. Nothing else is
// reachable; absence of an entry means absence of the capability.
func buildScope(ctx context.Context, store *ContextStore, broker *Broker) starlark.StringDict {
	contextDict := starlark.NewDict(store.Len())
	for _, e := range store.Entries() {
		// SetKey on a fresh dict with string keys cannot fail.
		_ = contextDict.SetKey(starlark.String(e.Key), starlark.String(e.Value))
	}
	contextDict.Freeze()

	getContext := starlark.NewBuiltin("get_context", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var key string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "key", &key); err != nil {
			return nil, err
		}
		return starlark.String(store.Get(key)), nil
	})

	listContextKeys := starlark.NewBuiltin("list_context_keys", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}
		keys := store.Keys()
		elems := make([]starlark.Value, len(keys))
		for i, k := range keys {
			elems[i] = starlark.String(k)
		}
		return starlark.NewList(elems), nil
	})

	searchContext := starlark.NewBuiltin("search_context", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var pattern string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern); err != nil {
			return nil, err
		}
		matches := store.Search(pattern)
		d := starlark.NewDict(matches.Len())
		for _, e := range matches.Entries() {
			_ = d.SetKey(starlark.String(e.Key), starlark.String(e.Value))
		}
		return d, nil
	})

	rlmCall := starlark.NewBuiltin("rlm_call", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var prompt string
		var subsetVal starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "prompt", &prompt, "subset?", &subsetVal); err != nil {
			return nil, err
		}
		subset, err := subsetStore(subsetVal)
		if err != nil {
			return nil, err
		}
		return starlark.String(broker.Delegate(ctx, prompt, subset)), nil
	})

	return starlark.StringDict{
		"context":           contextDict,
		"get_context":       getContext,
		"list_context_keys": listContextKeys,
		"search_context":    searchContext,
		"rlm_call":          rlmCall,
		"result":            starlark.String(""),
	}
}

// subsetStore converts an optional rlm_call subset argument into a context
// store. None (or omitted) means nil, which the broker resolves to the full
// context.
func subsetStore(v starlark.Value) (*ContextStore, error) {
	if v == nil || v == starlark.None {
		return nil, nil
	}
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("rlm_call: subset must be a dict of strings, got %s", v.Type())
	}
	entries := make(types.ContextMap, 0, dict.Len())
	for _, item := range dict.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("rlm_call: subset key must be a string, got %s", item[0].Type())
		}
		val, ok := starlark.AsString(item[1])
		if !ok {
			return nil, fmt.Errorf("rlm_call: subset value for %q must be a string, got %s", key, item[1].Type())
		}
		entries = append(entries, types.ContextEntry{Key: key, Value: val})
	}
	return NewContextStore(entries), nil
}
